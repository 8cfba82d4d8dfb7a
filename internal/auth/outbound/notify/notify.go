// Package notify delivers verification codes: email goes out directly over
// SMTP, mobile numbers are handed to an external SMS gateway through a
// broker event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/niagakita/passless/internal/pkg/mail"
	"github.com/niagakita/passless/internal/pkg/messaging"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SMSDestination is the broker topic/subject the SMS gateway consumes.
const SMSDestination = "auth.otp.sms"

const keyOfCorrelationID string = "cID"

// smsMessage is the wire payload published for the SMS gateway.
type smsMessage struct {
	UserID int64  `json:"user_id"`
	Mobile string `json:"mobile"`
	Text   string `json:"text"`
}

type Notifier struct {
	mail      mail.Mail
	publisher messaging.Publisher
	ins       instrument.Instrumentation
}

func NewNotifier(m mail.Mail, pub messaging.Publisher, ins instrument.Instrumentation) *Notifier {
	return &Notifier{
		mail:      m,
		publisher: pub,
		ins:       ins,
	}
}

func (n *Notifier) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return n.ins.Tracer("auth.outbound.notify").Start(ctx, name)
}

// SendCode delivers a verification code over the channel the identifier
// belongs to. The raw code appears only in the delivered message, never in
// logs or spans.
func (n *Notifier) SendCode(ctx context.Context, user *entity.User, channel entity.Channel, code string, ttl time.Duration) error {
	ctx, span := n.startSpan(ctx, "SendCode")
	defer span.End()

	text := codeText(code, ttl)

	var err error
	switch channel {
	case entity.ChannelEmail:
		err = n.sendEmail(ctx, user.Email, text)
	case entity.ChannelMobile:
		err = n.publishSMS(ctx, user.ID, user.Mobile, text)
	default:
		err = fmt.Errorf("notify: unsupported channel %d", channel)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// sendEmail retries transient SMTP failures with capped fibonacci backoff.
func (n *Notifier) sendEmail(ctx context.Context, to, text string) error {
	msg := mail.Message{
		To:       []string{to},
		Subject:  "Your verification code",
		TextBody: text,
	}

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	b = retry.WithMaxRetries(3, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := n.mail.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (n *Notifier) publishSMS(ctx context.Context, userID int64, mobile, text string) error {
	body, err := json.Marshal(smsMessage{
		UserID: userID,
		Mobile: mobile,
		Text:   text,
	})
	if err != nil {
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := n.publisher.Publish(ctx, SMSDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		return err
	}

	return nil
}

func codeText(code string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Your OTP is: %s. It expires in %d minutes.", code, minutes)
}
