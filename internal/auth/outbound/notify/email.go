package notify

import (
	"context"
	"fmt"

	"github.com/hartonodwi/authgate/internal/pkg/mail"
)

// SendEmailOTP delivers the code to an email address.
func (d *Dispatcher) SendEmailOTP(ctx context.Context, email, code string) (err error) {
	ctx, span := d.startSpan(ctx, "SendEmailOTP")
	defer func() { d.endSpan(span, err) }()

	return d.mail.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  "Your verification code",
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
	})
}
