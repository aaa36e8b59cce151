package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/ledger"
	appErrors "Wildfund/internal/errors"
)

const testSecret = "whsec_test_secret"

func sign(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", at.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"api_version":"2022-11-15","created":1700000000,"data":{"object":%s}}`, id, eventType, object))
}

type fakeRecorder struct {
	recordCompletedFn func(ctx context.Context, session ledger.CompletedSession) (donation.InsertResult, error)
	recordFailedFn    func(ctx context.Context, paymentIntentID string) (int64, error)
	sessions          []ledger.CompletedSession
	failed            []string
}

func (f *fakeRecorder) RecordCompletedSession(ctx context.Context, session ledger.CompletedSession) (donation.InsertResult, error) {
	f.sessions = append(f.sessions, session)
	if f.recordCompletedFn != nil {
		return f.recordCompletedFn(ctx, session)
	}
	return donation.Created, nil
}

func (f *fakeRecorder) RecordPaymentFailed(ctx context.Context, paymentIntentID string) (int64, error) {
	f.failed = append(f.failed, paymentIntentID)
	if f.recordFailedFn != nil {
		return f.recordFailedFn(ctx, paymentIntentID)
	}
	return 0, nil
}

type fakeEnricher struct {
	charges []ledger.ChargeEvent
	err     error
}

func (f *fakeEnricher) EnrichCharge(ctx context.Context, charge ledger.ChargeEvent) error {
	f.charges = append(f.charges, charge)
	return f.err
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) Archive(ctx context.Context, eventType, eventID string, payload []byte) error {
	f.keys = append(f.keys, eventType+"/"+eventID)
	return f.err
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	payload := eventPayload("evt_1", EventChargeSucceeded, `{"id":"ch_1","object":"charge"}`)
	verifier := NewVerifier(testSecret, 5*time.Minute)
	now := time.Now()

	tampered := append([]byte(nil), payload...)
	tampered = append(tampered[:len(tampered)-1], []byte(" }")...)

	tests := []struct {
		name    string
		payload []byte
		header  string
		wantErr bool
	}{
		{"valid signature", payload, sign(payload, testSecret, now), false},
		{"missing header", payload, "", true},
		{"wrong secret", payload, sign(payload, "whsec_other", now), true},
		{"tampered body", tampered, sign(payload, testSecret, now), true},
		{"expired timestamp", payload, sign(payload, testSecret, now.Add(-time.Hour)), true},
		{"garbage header", payload, "v1=abc", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := verifier.Verify(tt.payload, tt.header)
			if tt.wantErr {
				if !errors.Is(err, appErrors.ErrInvalidSignature) {
					t.Fatalf("expected invalid signature, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.ID != "evt_1" || string(event.Type) != EventChargeSucceeded {
				t.Fatalf("unexpected event %+v", event)
			}
		})
	}
}

func dispatch(t *testing.T, d *Dispatcher, payload []byte) error {
	t.Helper()
	event, err := NewVerifier(testSecret, 0).Verify(payload, sign(payload, testSecret, time.Now()))
	if err != nil {
		t.Fatalf("unexpected verification error: %v", err)
	}
	return d.Dispatch(context.Background(), event, payload)
}

func TestDispatchCheckoutSessionCompleted(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	archive := &fakeArchive{}
	d := NewDispatcher(recorder, &fakeEnricher{}, archive)

	payload := eventPayload("evt_cs", EventCheckoutSessionCompleted, `{
		"id":"cs_test_1","object":"checkout.session","payment_status":"paid","currency":"usd",
		"payment_intent":"pi_1","metadata":{"project_id":"01HZY3M4T0W8R6V5JQ2N7K9XCA","total_amount":"6300","project_amount":"6000","tip_amount":"300","cover_fees":"false","user_id":""}
	}`)

	if err := dispatch(t, d, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorder.sessions) != 1 {
		t.Fatalf("expected ledger call, got %d", len(recorder.sessions))
	}
	got := recorder.sessions[0]
	if got.SessionId != "cs_test_1" || got.PaymentIntentId != "pi_1" || got.Metadata["project_amount"] != "6000" {
		t.Fatalf("unexpected completed session %+v", got)
	}
	if string(got.RawEvent) != string(payload) {
		t.Fatalf("raw event must be the verified bytes")
	}
	if len(archive.keys) != 1 || archive.keys[0] != "checkout.session.completed/evt_cs" {
		t.Fatalf("unexpected archive keys %v", archive.keys)
	}
}

func TestDispatchUnpaidSessionIsAcknowledgedWithoutWrite(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	d := NewDispatcher(recorder, &fakeEnricher{}, nil)

	payload := eventPayload("evt_unpaid", EventCheckoutSessionCompleted, `{"id":"cs_2","object":"checkout.session","payment_status":"unpaid","payment_intent":"pi_2"}`)
	if err := dispatch(t, d, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorder.sessions) != 0 {
		t.Fatalf("unpaid session must not reach the ledger")
	}

	payload = eventPayload("evt_async", EventCheckoutSessionAsyncPaymentSucceed, `{"id":"cs_2","object":"checkout.session","payment_status":"paid","payment_intent":"pi_2"}`)
	if err := dispatch(t, d, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorder.sessions) != 1 {
		t.Fatalf("async success must follow the completed path")
	}
}

func TestDispatchAcknowledgementRule(t *testing.T) {
	t.Parallel()

	completed := eventPayload("evt_cs", EventCheckoutSessionCompleted, `{"id":"cs_3","object":"checkout.session","payment_status":"paid","payment_intent":"pi_3"}`)

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"already processed", nil, false},
		{"invalid metadata is acknowledged", appErrors.NewMetadataError("project_id", "ausente"), false},
		{"unknown project is acknowledged", appErrors.ErrProjectNotFound, false},
		{"storage failure asks for redelivery", appErrors.NewDatabaseError(errors.New("deadlock")), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := &fakeRecorder{recordCompletedFn: func(ctx context.Context, session ledger.CompletedSession) (donation.InsertResult, error) {
				if tt.err != nil {
					return 0, tt.err
				}
				return donation.AlreadyExists, nil
			}}
			err := dispatch(t, NewDispatcher(recorder, &fakeEnricher{}, nil), completed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDispatchChargeSucceeded(t *testing.T) {
	t.Parallel()

	enricher := &fakeEnricher{}
	d := NewDispatcher(&fakeRecorder{}, enricher, nil)

	payload := eventPayload("evt_ch", EventChargeSucceeded, `{
		"id":"ch_9","object":"charge","amount":6300,"currency":"usd","payment_intent":"pi_9",
		"balance_transaction":"txn_9",
		"payment_method_details":{"type":"card","card":{"brand":"visa","last4":"4242"}}
	}`)
	if err := dispatch(t, d, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enricher.charges) != 1 {
		t.Fatalf("expected enrichment call")
	}
	got := enricher.charges[0]
	if got.ChargeId != "ch_9" || got.PaymentIntentId != "pi_9" || got.CardBrand != "visa" || got.CardLast4 != "4242" || got.PaymentMethodType != "card" {
		t.Fatalf("unexpected charge summary %+v", got)
	}
}

func TestDispatchPaymentFailures(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	d := NewDispatcher(recorder, &fakeEnricher{}, nil)

	if err := dispatch(t, d, eventPayload("evt_pf", EventPaymentIntentFailed, `{"id":"pi_unknown","object":"payment_intent"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := dispatch(t, d, eventPayload("evt_af", EventCheckoutSessionAsyncPaymentFailed, `{"id":"cs_4","object":"checkout.session","payment_intent":"pi_4"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorder.failed) != 2 || recorder.failed[0] != "pi_unknown" || recorder.failed[1] != "pi_4" {
		t.Fatalf("unexpected failure calls %v", recorder.failed)
	}
}

func TestDispatchUnknownTypeAndArchiveFailure(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	archive := &fakeArchive{err: errors.New("s3 unavailable")}
	d := NewDispatcher(recorder, &fakeEnricher{}, archive)

	if err := dispatch(t, d, eventPayload("evt_x", "customer.created", `{"id":"cus_1","object":"customer"}`)); err != nil {
		t.Fatalf("unknown types must be acknowledged: %v", err)
	}
	if len(recorder.sessions) != 0 || len(recorder.failed) != 0 {
		t.Fatalf("unknown types must not reach the ledger")
	}
	if len(archive.keys) != 1 {
		t.Fatalf("expected archive attempt")
	}
}
