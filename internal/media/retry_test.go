package media

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast strips the delays so attempt counting does not sleep.
func fast(p RetryPolicy) RetryPolicy {
	p.Delay = 0
	p.MaxDelay = 0
	p.Backoff = BackoffNone
	return p
}

func TestRetryTransientUsesFullBudget(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
		want   int
	}{
		{name: "douyin budget", policy: DouyinRetry, want: 5},
		{name: "xhs budget", policy: XhsRetry, want: 5},
		{name: "bilibili budget", policy: BilibiliRetry, want: 5},
		{name: "kuaishou budget", policy: KuaishouRetry, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := fast(tt.policy).Do(context.Background(), func() error {
				attempts++
				return errors.New("connection reset")
			})
			assert.Equal(t, tt.want, attempts)

			var fetchErr *DataFetchError
			require.ErrorAs(t, err, &fetchErr)
		})
	}
}

func TestRetryStopsOnTypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "sign error", err: &SignError{Msg: "gateway down"}},
		{name: "ip block", err: &IPBlockError{Msg: "blocked"}},
		{name: "access frequency", err: &AccessFrequencyError{Msg: "slow down"}},
		{name: "captcha", err: &CaptchaRequiredError{VerifyType: "102"}},
		{name: "invalid input", err: &InvalidInputError{Msg: "bad cursor"}},
		{name: "terminal fetch error", err: &DataFetchError{Msg: "account blocked"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := fast(DouyinRetry).Do(context.Background(), func() error {
				attempts++
				return tt.err
			})
			assert.Equal(t, 1, attempts)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRetrySucceedsMidBudget(t *testing.T) {
	attempts := 0
	err := fast(BilibiliRetry).Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("timeout")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindSignFault, Classify(&SignError{}))
	assert.Equal(t, KindIPBlock, Classify(&IPBlockError{}))
	assert.Equal(t, KindAccessFrequency, Classify(&AccessFrequencyError{}))
	assert.Equal(t, KindCaptchaRequired, Classify(&CaptchaRequiredError{}))
	assert.Equal(t, KindInvalidInput, Classify(&InvalidInputError{}))
	assert.Equal(t, KindUnknown, Classify(&DataFetchError{}))
	assert.Equal(t, KindTransient, Classify(errors.New("socket closed")))

	// Wrapped typed errors still classify.
	wrapped := errors.Wrap(&SignError{Msg: "sign"}, "douyin")
	assert.Equal(t, KindSignFault, Classify(wrapped))
}

func TestLooseString(t *testing.T) {
	var payload struct {
		Fans    LooseString `json:"fans"`
		Follows LooseString `json:"follows"`
		Missing LooseString `json:"missing"`
	}
	err := json.Unmarshal([]byte(`{"fans":"1.2万","follows":1024,"missing":null}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "1.2万", payload.Fans.String())
	assert.Equal(t, "1024", payload.Follows.String())
	assert.Equal(t, "", payload.Missing.String())
}
