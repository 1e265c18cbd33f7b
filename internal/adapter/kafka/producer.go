package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
	"github.com/niksmo/luxe-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.ActivityProducer = (*ActivityProducer)(nil)
	_ port.ActivityProducer = NopActivityProducer{}
)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An ActivityProducer used for produce [domain.Activity].
//
// Records are keyed by product name.
type ActivityProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewActivityProducer(
	opts ...ProducerOpt,
) (ActivityProducer, error) {
	const op = "NewActivityProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ActivityProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ActivityProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return ActivityProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ActivityProducer) Close() {
	p.producer.close()
}

func (p ActivityProducer) ProduceActivity(
	ctx context.Context, v domain.Activity,
) error {
	const op = "ProduceActivity"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p ActivityProducer) createRecord(
	v domain.Activity,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := activityToSchemaV1(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.ProductName), Value: b}, nil
}

func activityToSchemaV1(v domain.Activity) (s schema.ActivityV1) {
	s.Kind = string(v.Kind)
	s.ProductName = v.ProductName
	s.Color = string(v.Color)
	s.Quantity = int64(v.Quantity)
	s.UnitPrice = v.UnitPrice
	s.CartTotal = v.CartTotal
	s.OccurredAt = v.OccurredAt
	return
}

// A NopActivityProducer drops activities.
//
// Used when no brokers are configured.
type NopActivityProducer struct{}

func (NopActivityProducer) ProduceActivity(
	context.Context, domain.Activity,
) error {
	return nil
}

func (NopActivityProducer) Close() {}
