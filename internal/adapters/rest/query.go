package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// unitRange bounds a descriptor filter.
type unitRange struct {
	Min float64 `validate:"gte=0,lte=1"`
	Max float64 `validate:"gte=0,lte=1,gtefield=Min"`
}

// openRange bounds tempo and duration filters.
type openRange struct {
	Min float64 `validate:"gte=0"`
	Max float64 `validate:"gte=0,gtefield=Min"`
}

type fingerprintQuery struct {
	Points   int    `validate:"gte=0,lte=20000"`
	Category string `validate:"omitempty,max=32"`
}

type albumQuery struct {
	K int `validate:"gte=0,lte=50"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidFilter, fmt.Sprintf(format, args...))
}

// validationError turns the first failed field into an ErrInvalidFilter.
func validationError(name string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return invalid("%s %s must satisfy %s=%s", name, strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return invalid("%s %s failed %s", name, strings.ToLower(fe.Field()), fe.Tag())
	}
	return invalid("%s: %v", name, err)
}

func parseFloatParam(q url.Values, key string, fallback float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid("%s must be a number", key)
	}
	return v, nil
}

func parseIntParam(q url.Values, key string, fallback int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be an integer", key)
	}
	return v, nil
}

func parseRange(q url.Values, name string, def domain.Range) (domain.Range, error) {
	lo, err := parseFloatParam(q, name+"_min", def.Min)
	if err != nil {
		return domain.Range{}, err
	}
	hi, err := parseFloatParam(q, name+"_max", def.Max)
	if err != nil {
		return domain.Range{}, err
	}
	return domain.Range{Min: lo, Max: hi}, nil
}

// parseFilter reads <feature>_min/_max for each descriptor, tempo_min/_max,
// duration_min/_max in minutes and repeated explicit values. Missing
// parameters keep the defaults of def.
func parseFilter(q url.Values, def domain.FilterSpec) (domain.FilterSpec, error) {
	spec := def
	v := validatorInstance()

	for _, f := range domain.Descriptors {
		name := strings.ToLower(string(f))
		r, err := parseRange(q, name, def.Descriptor(f))
		if err != nil {
			return domain.FilterSpec{}, err
		}
		if err := v.Struct(unitRange{Min: r.Min, Max: r.Max}); err != nil {
			return domain.FilterSpec{}, validationError(name, err)
		}
		spec = spec.SetDescriptor(f, r)
	}

	tempo, err := parseRange(q, "tempo", def.Tempo)
	if err != nil {
		return domain.FilterSpec{}, err
	}
	if err := v.Struct(openRange{Min: tempo.Min, Max: tempo.Max}); err != nil {
		return domain.FilterSpec{}, validationError("tempo", err)
	}
	spec.Tempo = tempo

	duration, err := parseRange(q, "duration", def.DurationMinutes)
	if err != nil {
		return domain.FilterSpec{}, err
	}
	if err := v.Struct(openRange{Min: duration.Min, Max: duration.Max}); err != nil {
		return domain.FilterSpec{}, validationError("duration", err)
	}
	spec.DurationMinutes = duration

	if raw, ok := q["explicit"]; ok {
		spec.Explicit = nil
		for _, s := range raw {
			for _, part := range strings.Split(s, ",") {
				e, err := domain.ParseExplicit(part)
				if err != nil {
					return domain.FilterSpec{}, err
				}
				spec.Explicit = append(spec.Explicit, e)
			}
		}
	}

	return spec, nil
}

func parseFingerprintQuery(q url.Values) (fingerprintQuery, error) {
	points, err := parseIntParam(q, "points", 0)
	if err != nil {
		return fingerprintQuery{}, err
	}
	fq := fingerprintQuery{Points: points, Category: q.Get("category")}
	if err := validatorInstance().Struct(fq); err != nil {
		return fingerprintQuery{}, validationError("fingerprint", err)
	}
	return fq, nil
}

func parseAlbumQuery(q url.Values) (albumQuery, error) {
	k, err := parseIntParam(q, "k", 0)
	if err != nil {
		return albumQuery{}, err
	}
	aq := albumQuery{K: k}
	if err := validatorInstance().Struct(aq); err != nil {
		return albumQuery{}, validationError("album", err)
	}
	return aq, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, invalid("id %q is not a valid identifier", raw)
	}
	return id, nil
}
