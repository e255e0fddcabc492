package response_test

import (
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-homectl/internal/response"
	"github.com/lexfrei/go-homectl/internal/soap"
)

type ackResponse struct {
	XMLName xml.Name `xml:"AckResponse"`
	Result  bool     `xml:"result"`
}

const (
	ackEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Body><AckResponse><result>true</result></AckResponse></soap:Body></soap:Envelope>`
	faultEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Body><soap:Fault><faultcode>soap:Client</faultcode><faultstring>unknown resource</faultstring>` +
		`</soap:Fault></soap:Body></soap:Envelope>`
)

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		result, err := response.Handle[ackResponse](newResponse(http.StatusOK, ackEnvelope), nil, "test error")
		require.NoError(t, err)
		assert.True(t, result.Result)
	})

	t.Run("client error", func(t *testing.T) {
		t.Parallel()

		clientErr := errors.New("network error")

		_, err := response.Handle[ackResponse](nil, clientErr, "test error")
		require.Error(t, err)
		assert.ErrorIs(t, err, clientErr)
		assert.Contains(t, err.Error(), "test error")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle[ackResponse](nil, nil, "test error")
		require.Error(t, err)
	})

	t.Run("soap fault", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle[ackResponse](newResponse(http.StatusInternalServerError, faultEnvelope), nil, "test error")
		require.Error(t, err)

		var fault *soap.Fault
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, "unknown resource", fault.String)
		assert.Contains(t, err.Error(), "status=500")
	})

	t.Run("status without fault", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle[ackResponse](newResponse(http.StatusUnauthorized, "Unauthorized"), nil, "test error")
		require.Error(t, err)

		var fault *soap.Fault
		assert.False(t, errors.As(err, &fault))
		assert.Contains(t, err.Error(), "status=401")
	})

	t.Run("undecodable body", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle[ackResponse](newResponse(http.StatusOK, "<html></html>"), nil, "test error")
		require.Error(t, err)
	})
}

func TestHandleWithStatus(t *testing.T) {
	t.Parallel()

	result, err := response.HandleWithStatus[ackResponse](newResponse(http.StatusAccepted, ackEnvelope), nil, "test error", http.StatusAccepted)
	require.NoError(t, err)
	assert.True(t, result.Result)

	_, err = response.HandleWithStatus[ackResponse](newResponse(http.StatusOK, ackEnvelope), nil, "test error", http.StatusAccepted)
	require.Error(t, err)
}
