package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ActivitySchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "activity",
	"fields" : [
		{"name": "kind", "type": "string"},
		{"name": "product_name", "type": "string"},
		{"name": "color", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "unit_price", "type": "long"},
		{"name": "cart_total", "type": "long"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type ActivityV1 struct {
	Kind        string    `avro:"kind"`
	ProductName string    `avro:"product_name"`
	Color       string    `avro:"color"`
	Quantity    int64     `avro:"quantity"`
	UnitPrice   int64     `avro:"unit_price"`
	CartTotal   int64     `avro:"cart_total"`
	OccurredAt  time.Time `avro:"occurred_at"`
}

func ActivityV1Avro() avro.Schema {
	return avro.MustParse(ActivitySchemaTextV1)
}
