package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioClientSendSMS(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var gotPath, gotTo, gotFrom, gotBody string
		var gotUser, gotPass string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUser, gotPass, _ = r.BasicAuth()
			require.NoError(t, r.ParseForm())
			gotTo = r.PostForm.Get("To")
			gotFrom = r.PostForm.Get("From")
			gotBody = r.PostForm.Get("Body")
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := NewTwilioClient(TwilioConfig{
			AccountSID: "AC123",
			AuthToken:  "token",
			FromNumber: "+15550000000",
			BaseURL:    srv.URL,
		})

		err := client.SendSMS(ctx, "+15551234567", "Your verification code is 123456. It expires in 10 minutes.")

		require.NoError(t, err)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
		assert.Equal(t, "AC123", gotUser)
		assert.Equal(t, "token", gotPass)
		assert.Equal(t, "+15551234567", gotTo)
		assert.Equal(t, "+15550000000", gotFrom)
		assert.Contains(t, gotBody, "123456")
	})

	t.Run("ProviderError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":20003}`))
		}))
		defer srv.Close()

		client := NewTwilioClient(TwilioConfig{AccountSID: "AC123", BaseURL: srv.URL})

		err := client.SendSMS(ctx, "+15551234567", "hi")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "20003")
	})
}
