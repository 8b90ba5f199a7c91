package es

import (
	"errors"
	"net/http"
	"testing"

	"github.com/olivere/elastic/v7"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func TestClassifyMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   searchbackend.ErrKind
	}{
		{http.StatusTooManyRequests, searchbackend.KindProviderQuota},
		{http.StatusBadRequest, searchbackend.KindValidation},
		{http.StatusUnprocessableEntity, searchbackend.KindValidation},
		{http.StatusConflict, searchbackend.KindSchemaConflict},
		{http.StatusInternalServerError, searchbackend.KindTransport},
	}
	for _, c := range cases {
		err := &elastic.Error{Status: c.status}
		if got := classify(err); got != c.want {
			t.Errorf("classify(status=%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestClassifyUnknownErrorIsTransport(t *testing.T) {
	if got := classify(errors.New("boom")); got != searchbackend.KindTransport {
		t.Fatalf("classify(plain error) = %v, want transport", got)
	}
}
