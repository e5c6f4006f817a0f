package httpio

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odpem/drims/pkg/authz"
)

// The handlers below cover the common shapes of a DRIMS endpoint. The
// acting user passed to create and update functions is the request identity.

// ListHandler answers with {key: items, "totalSize": n}.
func ListHandler[Out any](logger *slog.Logger, key string, list func(r *http.Request) ([]Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r)
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		if items == nil {
			items = []Out{}
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			key:         items,
			"totalSize": len(items),
		})
	}
}

// GetHandler loads the record named by the URL parameter param.
func GetHandler[Out any](logger *slog.Logger, param string, get func(ctx context.Context, id int64) (*Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := IDParam(r, param)
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		out, err := get(r.Context(), id)
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, out)
	}
}

// CreateHandler decodes an In body, runs create and answers 201.
func CreateHandler[In, Out any](logger *slog.Logger, create func(ctx context.Context, in *In, actor string) (*Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := new(In)
		if err := Decode(r, in); err != nil {
			Fail(w, r, logger, err)
			return
		}
		out, err := create(r.Context(), in, authz.Actor(r.Context()))
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, out)
	}
}

// UpdateHandler decodes an In body and applies it to the record named by the
// URL parameter param. Status changes posted to /{id}/close and similar use
// it too.
func UpdateHandler[In, Out any](logger *slog.Logger, param string, update func(ctx context.Context, id int64, in *In, actor string) (*Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := IDParam(r, param)
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		in := new(In)
		if err := Decode(r, in); err != nil {
			Fail(w, r, logger, err)
			return
		}
		out, err := update(r.Context(), id, in, authz.Actor(r.Context()))
		if err != nil {
			Fail(w, r, logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, out)
	}
}
