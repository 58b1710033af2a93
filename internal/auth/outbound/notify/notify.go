// Package notify delivers verification codes over email and SMS.
package notify

import (
	"context"

	"github.com/hartonodwi/authgate/internal/auth/entity"
	"github.com/hartonodwi/authgate/internal/pkg/instrument"
	"github.com/hartonodwi/authgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher routes verification codes to the provider for the channel.
//
// A nil provider means the channel is unconfigured; callers decide what to do
// in that case (the send flow falls back to the dev echo when enabled).
type Dispatcher struct {
	mail mail.Mail
	sms  SMSClient
	ins  instrument.Instrumentation
}

type Dependency struct {
	Mail       mail.Mail
	SMS        SMSClient
	Instrument instrument.Instrumentation
}

func NewDispatcher(dep Dependency) *Dispatcher {
	return &Dispatcher{
		mail: dep.Mail,
		sms:  dep.SMS,
		ins:  dep.Instrument,
	}
}

// Configured reports whether a delivery provider exists for the channel.
func (d *Dispatcher) Configured(ch entity.Channel) bool {
	switch ch {
	case entity.ChannelEmail:
		return d.mail != nil
	case entity.ChannelPhone:
		return d.sms != nil
	default:
		return false
	}
}

func (d *Dispatcher) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return d.ins.Tracer("auth.outbound.notify").Start(ctx, name)
}

func (d *Dispatcher) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
