package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharePayloadRequest_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		req     SharePayloadRequest
		want    string
		wantErr error
	}{
		{name: "raw payload", req: SharePayloadRequest{Payload: " abc "}, want: "abc"},
		{name: "payload wins over url", req: SharePayloadRequest{Payload: "abc", URL: "https://x/?s=def"}, want: "abc"},
		{name: "from url", req: SharePayloadRequest{URL: "https://greenmacros.app/?tab=planner&s=abc-_1"}, want: "abc-_1"},
		{name: "nothing", req: SharePayloadRequest{}, wantErr: ErrPayloadRequired},
		{name: "url without parameter", req: SharePayloadRequest{URL: "https://greenmacros.app/"}, wantErr: ErrLinkWithoutPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Resolve("s")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSharePayloadRequest_ResolveBadURL(t *testing.T) {
	req := SharePayloadRequest{URL: "http://[::1"}
	_, err := req.Resolve("s")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "url", verr.Field)
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "payload: payload or url is required", ErrPayloadRequired.Error())
}
