package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/mailer"
	"github.com/dmitrijs2005/hisabkitab/internal/server/metrics"
	"github.com/dmitrijs2005/hisabkitab/internal/server/otp"
	"github.com/prometheus/client_golang/prometheus"
)

// OTPIssuer mints codes and mails them. Binding a code to a user is left
// to the caller, so registration can store it in the same upsert that
// creates the account.
type OTPIssuer struct {
	sender   mailer.Sender
	ttl      time.Duration
	log      logging.Logger
	issued   *prometheus.CounterVec
	now      func() time.Time
	generate func() (string, error)
}

func NewOTPIssuer(sender mailer.Sender, ttl time.Duration, log logging.Logger, m *metrics.Metrics) *OTPIssuer {
	i := &OTPIssuer{
		sender:   sender,
		ttl:      ttl,
		log:      log.With("module", "otp"),
		now:      time.Now,
		generate: otp.Generate,
	}
	if m != nil {
		i.issued = m.OTPIssued
	}
	return i
}

// code returns a fresh code and its absolute expiry.
func (i *OTPIssuer) code() (string, time.Time, error) {
	code, err := i.generate()
	if err != nil {
		return "", time.Time{}, common.ErrorInternal
	}
	return code, i.now().Add(i.ttl), nil
}

// deliver mails code to the user. The code is already persisted, so a
// failure leaves it in place; the next issue overwrites it.
func (i *OTPIssuer) deliver(ctx context.Context, to string, purpose otp.Purpose, code string) error {
	msg := otp.MessageFor(purpose, code, i.ttl)

	if err := i.sender.Send(ctx, to, msg.Subject, msg.Body); err != nil {
		i.count(purpose, "failed")
		i.log.Error(ctx, "otp mail not delivered", "purpose", purpose, "error", err)
		return fmt.Errorf("%w: %v", common.ErrorDelivery, err)
	}

	i.count(purpose, "sent")
	i.log.Info(ctx, "otp issued", "purpose", purpose)
	return nil
}

func (i *OTPIssuer) count(purpose otp.Purpose, result string) {
	if i.issued != nil {
		i.issued.WithLabelValues(string(purpose), result).Inc()
	}
}
