package errors

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/vango-dev/mall/pkg/history"
	"github.com/vango-dev/mall/pkg/route"
	"github.com/vango-dev/mall/pkg/router"
	"github.com/vango-dev/mall/pkg/view"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Classify maps router, route table and view errors onto registered codes.
// A MallError anywhere in the chain is returned unchanged.
func Classify(err error) *MallError {
	if err == nil {
		return nil
	}

	var me *MallError
	if As(err, &me) {
		return me
	}

	var ve *route.ValidationError
	if As(err, &ve) {
		return New("E200").WithDetail(strings.Join(ve.Problems, "; ")).Wrap(err)
	}

	switch {
	case Is(err, router.ErrUnresolved):
		return New("E201").Wrap(err)
	case Is(err, router.ErrInvalidLocation):
		return New("E202").Wrap(err)
	case Is(err, router.ErrRedirectLoop):
		return New("E203").Wrap(err)
	case Is(err, router.ErrRouteNotFound):
		return New("E204").Wrap(err)
	case Is(err, router.ErrSuperseded):
		return New("E205").Wrap(err)
	case Is(err, history.ErrNoEntry):
		return New("E206").Wrap(err)
	case Is(err, view.ErrViewNotFound):
		return New("E300").Wrap(err)
	case Is(err, router.ErrLoadFailed):
		return New("E301").Wrap(err)
	}
	return Newf(CategoryServer, "Internal error").Wrap(err)
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	me := Classify(err)
	if me == nil {
		return http.StatusOK
	}
	switch me.Code {
	case "E201", "E204":
		return http.StatusNotFound
	case "E202":
		return http.StatusBadRequest
	case "E205", "E206":
		return http.StatusConflict
	case "E300", "E301":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
