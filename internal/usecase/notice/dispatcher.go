// Package notice turns engine outcomes into messages for a notify.Sink.
package notice

import (
	"context"

	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/internal/domain/notify"
	"retailbank-backoffice/pkg/mask"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Dispatcher resolves the owner's address and hands the message to the sink.
// It never returns an error: by the time it runs the mutation is committed.
type Dispatcher struct {
	dir  identity.Directory
	sink notify.Sink
	log  *logrus.Logger
}

func NewDispatcher(dir identity.Directory, sink notify.Sink, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{dir: dir, sink: sink, log: log}
}

func (d *Dispatcher) Send(ctx context.Context, ownerID, subject, body string) {
	if d == nil || d.sink == nil || d.dir == nil {
		return
	}
	entry := d.log.WithFields(logrus.Fields{"owner_id": ownerID, "subject": subject})

	info, err := d.dir.GetBasicInfo(ctx, ownerID)
	if err != nil {
		entry.WithError(err).Warn("notification skipped: owner lookup failed")
		return
	}
	if !info.IsActive || info.Email == "" {
		entry.Debug("notification skipped: owner inactive or without email")
		return
	}
	if err := d.sink.Notify(ctx, info.Email, subject, "Hello "+info.Name+",\n\n"+body); err != nil {
		entry.WithField("recipient", mask.Email(info.Email)).WithError(err).Warn("notification failed")
	}
}

// Money renders an amount with two decimals.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }
