// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapHandlerFunc(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{nil, http.StatusOK, ""},
		{utils.BadRequest(errors.New("bad")), http.StatusBadRequest, ""},
		{errors.WithMessage(meter.NewError(meter.KindUnauthorized, "not owner"), "ctx"), http.StatusForbidden, "Unauthorized"},
		{meter.NewError(meter.KindInvalidState, "ended"), http.StatusConflict, "InvalidState"},
		{meter.NewError(meter.KindValidationFailure, "too low"), http.StatusBadRequest, "ValidationFailure"},
		{meter.NewError(meter.KindExternalDependencyFailure, "stale"), http.StatusBadGateway, "ExternalDependencyFailure"},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		utils.WrapHandlerFunc(func(w http.ResponseWriter, req *http.Request) error {
			return c.err
		})(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, c.status, rec.Code)
		assert.Equal(t, c.kind, rec.Header().Get("X-Error-Kind"))
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, utils.ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, utils.ParseJSON(strings.NewReader(`{"b":1}`), &v))
}
