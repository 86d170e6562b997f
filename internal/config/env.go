package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var durationType = reflect.TypeOf(time.Duration(0))

// LoadEnv overrides configuration values with environment variables.
// Each field opts in through an `env:"NAME"` tag; unset variables leave the
// value from the YAML file untouched.
func LoadEnv(config *AppConfig) error {
	sections := []any{
		&config.App,
		&config.Server,
		&config.Database,
		&config.API,
		&config.Logging,
		&config.CORS,
		&config.Metrics,
	}

	applied := 0
	for _, section := range sections {
		n, err := applyEnv(section)
		if err != nil {
			return err
		}
		applied += n
	}

	log.Debug().
		Int("overrides", applied).
		Str("db_driver", config.Database.Driver).
		Msg("Environment overrides applied")

	return nil
}

// applyEnv sets every tagged field of the struct behind section whose
// variable is present, and reports how many were set.
func applyEnv(section any) (int, error) {
	val := reflect.ValueOf(section).Elem()
	typ := val.Type()

	applied := 0
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Tag.Get("env")
		field := val.Field(i)
		if name == "" || !field.CanSet() {
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}

		if err := decodeEnv(field, raw); err != nil {
			return applied, fmt.Errorf("environment variable %s: %w", name, err)
		}
		applied++
	}

	return applied, nil
}

// decodeEnv parses raw according to the kind of dst.
func decodeEnv(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		dst.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		dst.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		dst.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		dst.SetFloat(f)

	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", dst.Type())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported type %s", dst.Type())
	}

	return nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(raw string) []string {
	items := make([]string, 0, strings.Count(raw, ",")+1)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
