// Zaparoo Playtime
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Playtime.
//
// Zaparoo Playtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Playtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Playtime.  If not, see <http://www.gnu.org/licenses/>.

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messages maps a validator tag to its message. The first verb is the
// field name and the second, when present, the tag parameter.
var messages = map[string]string{
	"required": "%s is required",
	"coverurl": "%s must be an http, https, file or data URL",
	"gamepath": "%s must be a path to an executable file",
	"url":      "%s must be a valid URL",
	"oneof":    "%s must be one of: %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be less than or equal to %s",
}

// Error is returned for params that fail their validate tags. Its message
// is shown to API clients as is.
type Error struct {
	Fields []FieldError
}

type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var sb strings.Builder
	for i := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Fields[i].Message)
	}
	return sb.String()
}

func NewError(errs validator.ValidationErrors) *Error {
	ve := &Error{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return ve
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	tmpl, ok := messages[fe.Tag()]
	switch {
	case !ok:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	case strings.Count(tmpl, "%s") == 2:
		return fmt.Sprintf(tmpl, field, fe.Param())
	default:
		return fmt.Sprintf(tmpl, field)
	}
}
