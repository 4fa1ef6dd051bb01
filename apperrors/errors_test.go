package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		kind   apperrors.Kind
		status int
		name   string
	}{
		{apperrors.KindUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{apperrors.KindForbidden, http.StatusForbidden, "forbidden"},
		{apperrors.KindInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{apperrors.KindNotFound, http.StatusNotFound, "not_found"},
		{apperrors.KindConflict, http.StatusConflict, "conflict"},
		{apperrors.KindUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{apperrors.KindInternal, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.status, tt.kind.HTTPStatus(), tt.name)
		require.Equal(t, tt.name, tt.kind.String())
	}
}

func TestWrappedErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("load: %w", apperrors.Internal(cause))

	require.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	require.Equal(t, "Internal server error", apperrors.PublicMessage(err))
	require.ErrorIs(t, err, cause)

	notFound := fmt.Errorf("lookup: %w", apperrors.NotFound("Student"))
	require.ErrorIs(t, notFound, apperrors.NotFound("Student"))
	require.NotErrorIs(t, notFound, apperrors.NotFound("Teacher"))
	require.Equal(t, "Student not found", apperrors.PublicMessage(notFound))

	require.Equal(t, apperrors.KindInternal, apperrors.KindOf(cause))
	require.Equal(t, "Internal server error", apperrors.PublicMessage(cause))
}
