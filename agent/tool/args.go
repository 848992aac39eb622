package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/spinlab/coach/agent/contract"
)

// looseInt accepts 5, 5.0 and "5"; models are not consistent about it.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("expected integer, got %q", s)
		}
		*n = looseInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = looseInt(int(f))
	return nil
}

// looseBool accepts true and "true"; nil means the field was omitted.
type looseBool struct {
	set   bool
	value bool
}

func (v *looseBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("expected boolean, got %q", s)
		}
		v.set, v.value = true, parsed
		return nil
	}
	if err := json.Unmarshal(b, &v.value); err != nil {
		return err
	}
	v.set = true
	return nil
}

func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	return out, nil
}

// isJSONObject reports whether raw is empty or a well formed JSON object.
func isJSONObject(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	return json.Valid([]byte(trimmed))
}

func clampLimit(v looseInt, def, max int) int {
	n := int(v)
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

var dateLayouts = []string{time.DateOnly, "02/01/2006", "2006/01/02"}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: data inválida %q, use YYYY-MM-DD", contractx.ErrValidation, raw)
}

// parseClock reads "14:30", "14h30", "14h" or "9" as an offset from midnight.
func parseClock(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "min")
	s = strings.Replace(s, "h", ":", 1)
	s = strings.TrimSuffix(s, ":")

	hourPart, minutePart, _ := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: horário inválido %q, use HH:MM", contractx.ErrValidation, raw)
	}
	minute := 0
	if minutePart != "" {
		if len(minutePart) > 2 {
			// accept seconds, ignore them
			minutePart = minutePart[:2]
		}
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return 0, fmt.Errorf("%w: horário inválido %q, use HH:MM", contractx.ErrValidation, raw)
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: horário fora do intervalo %q", contractx.ErrValidation, raw)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

func atClock(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(offset)
}

func startOfDay(t time.Time) time.Time {
	return atClock(t, 0)
}

func trimmedIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", contractx.ErrValidation, msg)
}
