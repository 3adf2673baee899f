package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date принимает в JSON как "2024-01-01", так и RFC3339.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// ParseDate разбирает дату без времени (полночь UTC) или RFC3339.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q: ожидается YYYY-MM-DD или RFC3339", raw)
	}
	return t, nil
}

// DateField переводит поле патча с Date в поле с time.Time.
func DateField(f Field[Date]) Field[time.Time] {
	if !f.Set {
		return Field[time.Time]{}
	}
	if f.Value == nil {
		return Null[time.Time]()
	}
	return SetTo(f.Value.Time)
}
