package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/superhero-teams/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePlatform struct {
	hasHardware  bool
	enrolled     bool
	hardwareErr  error
	outcome      gate.Outcome
	challengeErr error
	prompts      []string
}

func (f *fakePlatform) HasHardware(ctx context.Context) (bool, error) {
	return f.hasHardware, f.hardwareErr
}

func (f *fakePlatform) IsEnrolled(ctx context.Context) (bool, error) {
	return f.enrolled, nil
}

func (f *fakePlatform) Challenge(ctx context.Context, prompt string) (gate.Outcome, error) {
	f.prompts = append(f.prompts, prompt)
	return f.outcome, f.challengeErr
}

func TestGate_Authenticate(t *testing.T) {
	tests := []struct {
		name       string
		platform   *fakePlatform
		wantCode   gate.Code
		wantPrompt bool
	}{
		{
			name:       "success",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Success: true}},
			wantPrompt: true,
		},
		{
			name:     "no hardware",
			platform: &fakePlatform{hasHardware: false, enrolled: true},
			wantCode: gate.CodeNotAvailable,
		},
		{
			name:     "not enrolled",
			platform: &fakePlatform{hasHardware: true, enrolled: false},
			wantCode: gate.CodeNotAvailable,
		},
		{
			name:     "hardware check error",
			platform: &fakePlatform{hardwareErr: errors.New("boom")},
			wantCode: gate.CodeNotAvailable,
		},
		{
			name:       "user cancel",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonUserCancel}},
			wantCode:   gate.CodeUserCancel,
			wantPrompt: true,
		},
		{
			name:       "system cancel",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonSystemCancel}},
			wantCode:   gate.CodeSystemCancel,
			wantPrompt: true,
		},
		{
			name:       "fallback",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonUserFallback}},
			wantCode:   gate.CodeUserFallback,
			wantPrompt: true,
		},
		{
			name:       "enrollment lost mid prompt",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonNotEnrolled}},
			wantCode:   gate.CodeNotEnrolled,
			wantPrompt: true,
		},
		{
			name:       "temporary lockout",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonLockout}},
			wantCode:   gate.CodeLockout,
			wantPrompt: true,
		},
		{
			name:       "permanent lockout",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonLockoutPermanent}},
			wantCode:   gate.CodeLockoutPermanent,
			wantPrompt: true,
		},
		{
			name:       "plain failure",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: gate.ReasonFailed}},
			wantCode:   gate.CodeAuthenticationFailed,
			wantPrompt: true,
		},
		{
			name:       "unmapped reason",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Reason: "passcode_not_set"}},
			wantCode:   gate.CodeUnknown,
			wantPrompt: true,
		},
		{
			name:       "challenge error",
			platform:   &fakePlatform{hasHardware: true, enrolled: true, challengeErr: errors.New("driver crashed")},
			wantCode:   gate.CodeUnknown,
			wantPrompt: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var observed []gate.Code
			g := gate.New(tt.platform, zaptest.NewLogger(t), func(c gate.Code) {
				observed = append(observed, c)
			})

			result := g.Authenticate(context.Background(), "")

			if tt.wantPrompt {
				require.Len(t, tt.platform.prompts, 1)
				assert.Equal(t, gate.DefaultPrompt, tt.platform.prompts[0])
			} else {
				assert.Empty(t, tt.platform.prompts, "platform must not be prompted")
			}

			if tt.wantCode == "" {
				assert.True(t, result.Success)
				assert.Nil(t, result.Error)
				assert.NoError(t, result.Err())
				assert.Equal(t, []gate.Code{gate.CodeSuccess}, observed)
				return
			}

			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.Equal(t, tt.wantCode, result.Error.Code)
			assert.NotEmpty(t, result.Error.Message)
			assert.Equal(t, []gate.Code{tt.wantCode}, observed)

			var gateErr *gate.Error
			require.ErrorAs(t, result.Err(), &gateErr)
			assert.Equal(t, tt.wantCode, gateErr.Code)
		})
	}
}

func TestGate_CustomPrompt(t *testing.T) {
	platform := &fakePlatform{hasHardware: true, enrolled: true, outcome: gate.Outcome{Success: true}}
	g := gate.New(platform, nil, nil)

	result := g.Authenticate(context.Background(), "Confirm team change")

	assert.True(t, result.Success)
	assert.Equal(t, []string{"Confirm team change"}, platform.prompts)
}
