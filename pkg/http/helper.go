package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	DateLayout = "2006-01-02"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}

// Actor reads the caller identity set by the upstream gateway. X-Actor-ID
// wins over X-User-ID; the role defaults to USER.
func Actor(r *http.Request) (model.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderActorID))
	if id == "" {
		id = strings.TrimSpace(r.Header.Get(HeaderUserID))
	}
	if id == "" {
		return model.Actor{}, apperrors.Unauthorized("missing caller identity")
	}

	role := model.RoleUser
	switch strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderActorRole))) {
	case "", string(model.RoleUser):
	case string(model.RoleStaff):
		role = model.RoleStaff
	default:
		return model.Actor{}, apperrors.InvalidInput("unknown actor role")
	}

	return model.Actor{ID: id, Role: role}, nil
}

func StaffActor(r *http.Request) (model.Actor, error) {
	actor, err := Actor(r)
	if err != nil {
		return actor, err
	}
	if !actor.IsStaff() {
		return model.Actor{}, apperrors.Forbidden("staff role required")
	}
	return actor, nil
}

// ParseDate parses a YYYY-MM-DD query value as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid date, expected YYYY-MM-DD: " + value)
	}
	return d, nil
}

func QueryInt(r *http.Request, key string, fallback int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return v, nil
}
