package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = New(Validation, "no file uploaded")

func TestKindAndStatus(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", errSentinel)

	assert.Equal(t, Validation, KindOf(wrapped))
	assert.Equal(t, http.StatusBadRequest, Status(KindOf(wrapped)))
	assert.True(t, errors.Is(wrapped, errSentinel))

	assert.Equal(t, Internal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, http.StatusInternalServerError, Status(Internal))
	assert.Equal(t, http.StatusBadRequest, Status(PayloadTooLarge))
	assert.Equal(t, http.StatusNotFound, Status(NotFound))
	assert.Equal(t, http.StatusConflict, Status(Conflict))
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	cause := errors.New("open /srv/storage/.tmp/123_a.mp4: permission denied")

	assert.Equal(t, "internal server error", PublicMessage(cause))
	assert.Equal(t, "internal server error", PublicMessage(Internalf(cause, "write upload")))
	assert.Equal(t, "no file uploaded", PublicMessage(errSentinel))

	v := Wrap(Validation, errSentinel, "unsupported file type %q", "application/pdf")
	assert.Equal(t, `unsupported file type "application/pdf"`, PublicMessage(v))
	assert.True(t, errors.Is(v, errSentinel))
}
