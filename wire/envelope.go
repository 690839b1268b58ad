// Package wire defines the provider-shaped JSON types returned over HTTP:
// one Go struct per resource and per list envelope (spec §6, §9 "Dynamic
// JSON <-> static types": one named record per resource/response
// envelope instead of untyped dictionaries). Field shapes mirror
// google.golang.org/api/compute/v1 and google.golang.org/api/storage/v1,
// the generated client types for the real provider's JSON API, so that an
// unmodified SDK pointed at this emulator decodes the same fields it
// would from the real service.
package wire

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// ErrorEnvelope is spec §4.8's fixed error shape.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  []ErrorItem `json:"errors"`
}

type ErrorItem struct {
	Message string `json:"message"`
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
}

// WriteJSON marshals v with the same json-iterator configuration used
// everywhere in this module and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		// marshaling our own wire types should never fail; if it does,
		// fall back to a minimal valid envelope rather than panic mid-response.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal marshal error","errors":[{"message":"internal marshal error","domain":"global","reason":"internalError"}]}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// WriteError maps err to spec §4.8's envelope. Any error that isn't a
// *cmnerr.Error is treated as an internalError, matching §7's propagation
// policy ("validators raise typed errors that the request layer maps...").
func WriteError(w http.ResponseWriter, err error) {
	ce, ok := cmnerr.As(err)
	if !ok {
		ce = cmnerr.Internalf(err, "%v", err)
	}
	env := ErrorEnvelope{Error: ErrorBody{
		Code:    ce.Code(),
		Message: ce.Message,
		Errors: []ErrorItem{{
			Message: ce.Message,
			Domain:  "global",
			Reason:  ce.Reason(),
		}},
	}}
	WriteJSON(w, ce.Code(), env)
}

// DecodeJSONBody is the shared request-body decoder used by every handler.
func DecodeJSONBody(r *http.Request, v interface{}) error {
	dec := jsoniter.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return cmnerr.Invalidf("malformed JSON body: %v", err)
	}
	return nil
}
