package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/pkg/mailer"
	mailtpl "github.com/fittinglab/storefront/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessRendersTemplate(t *testing.T) {
	cfg := &config.Config{CompanyName: "FittingLab", StorefrontURL: "https://shop.example.de/"}
	body := jobBody(t, mailer.EmailJob{
		To:       "max@example.de",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(cfg, "Max", "max@example.de"),
	})
	mg := &fakeSender{}

	require.NoError(t, process(context.Background(), mg, body))
	require.Len(t, mg.sent, 1)
	assert.Equal(t, "max@example.de", mg.sent[0].to)
	assert.Equal(t, "Willkommen bei FittingLab", mg.sent[0].subject)
}

func TestProcessRawMessage(t *testing.T) {
	mg := &fakeSender{}
	body := jobBody(t, mailer.EmailJob{To: "max@example.de", Subject: "Hallo", Text: "Test"})

	require.NoError(t, process(context.Background(), mg, body))
	assert.Equal(t, "Hallo", mg.sent[0].subject)
}

func TestProcessPoisonMessages(t *testing.T) {
	cases := map[string][]byte{
		"bad json":         []byte("{"),
		"no recipient":     jobBody(t, mailer.EmailJob{Subject: "x"}),
		"unknown template": jobBody(t, mailer.EmailJob{To: "max@example.de", Template: "newsletter"}),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			mg := &fakeSender{}
			err := process(context.Background(), mg, body)
			assert.ErrorIs(t, err, errPoison)
			assert.Empty(t, mg.sent)
		})
	}
}

func TestProcessSendFailureIsRetryable(t *testing.T) {
	mg := &fakeSender{err: errors.New("mailgun down")}
	err := process(context.Background(), mg, jobBody(t, mailer.EmailJob{To: "max@example.de", Subject: "x", Text: "y"}))

	require.Error(t, err)
	assert.False(t, errors.Is(err, errPoison))
}
