package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/internal/pkg/mail"
)

type recordingDeliverer struct {
	tpl  mail.Template
	to   string
	data mail.Data
	err  error
}

func (d *recordingDeliverer) Deliver(_ context.Context, tpl mail.Template, to string, data mail.Data) (mail.Result, error) {
	d.tpl, d.to, d.data = tpl, to, data
	if d.err != nil {
		return mail.Result{}, d.err
	}
	return mail.Result{Simulated: true}, nil
}

func TestEnqueueEmail_Validation(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.EnqueueEmail(context.Background(), mail.Template("nope"), "ana@celumarket.test", mail.Data{})
	assert.Error(t, err)

	_, err = q.EnqueueEmail(context.Background(), mail.TemplateWelcome, "", mail.Data{})
	assert.Error(t, err)
}

func TestEmailJob_RoundTrip(t *testing.T) {
	q, _ := newTestQueue(t)
	deliverer := &recordingDeliverer{}
	q.Register(JobTypeSendEmail, NewEmailHandler(deliverer))

	_, err := q.EnqueueEmail(context.Background(), mail.TemplateListingRejected, "ana@celumarket.test", mail.Data{
		Name:     "Ana",
		Title:    "Apple iPhone 12",
		Reason:   "Fotos borradas",
		EntityID: 7,
	})
	require.NoError(t, err)

	took, err := q.ProcessNext(context.Background())
	require.NoError(t, err)
	require.True(t, took)

	assert.Equal(t, mail.TemplateListingRejected, deliverer.tpl)
	assert.Equal(t, "ana@celumarket.test", deliverer.to)
	assert.Equal(t, "Fotos borradas", deliverer.data.Reason)
	assert.Equal(t, uint(7), deliverer.data.EntityID)
}

func TestEmailHandler_Errors(t *testing.T) {
	handler := NewEmailHandler(&recordingDeliverer{err: errors.New("rejected")})

	err := handler(context.Background(), &Job{Payload: json.RawMessage(`{"template":"welcome","to":"ana@celumarket.test"}`)})
	assert.EqualError(t, err, "rejected")

	err = handler(context.Background(), &Job{Payload: json.RawMessage(`{"template":"nope"}`)})
	assert.ErrorContains(t, err, "unknown email template")

	err = handler(context.Background(), &Job{ID: "empty"})
	assert.ErrorContains(t, err, "invalid email payload")
}
