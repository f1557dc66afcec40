package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a variable is neither set nor has a default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrVarEmpty is returned when a variable tagged `required:"true"` resolves to an empty value.
	ErrVarEmpty = errors.New("env var empty")

	// ErrUnsupportedVarType is returned when trying to parse a variable into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

// FileVar is the variable (below the namespace) naming an optional YAML config file.
const FileVar = "CONFIG_FILE"

//nolint:gochecknoglobals
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
	file      string
}

// Namespace returns the namespace the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

// File returns the path of the YAML file that was overlaid, if any.
func (c EnvConfig) File() string {
	return c.file
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// source resolves a variable from the environment first, then from the overlay file.
type source struct {
	nsParts []string
	file    map[string]string
}

func newSource(namespace string) source {
	return source{nsParts: strings.Split(namespace, "_")}
}

// lookupEnv walks from the most to the least specific namespace.
func (s source) lookupEnv(name string) (string, bool) {
	for i := len(s.nsParts); i > 0; i-- {
		envName := strings.Join(s.nsParts[:i], "_")

		if envName != "" {
			envName += "_"
		}

		if value, ok := os.LookupEnv(envName + name); ok {
			return value, true
		}
	}

	return "", false
}

func (s source) lookup(name string) (string, bool) {
	if value, ok := s.lookupEnv(name); ok {
		return value, true
	}

	value, ok := s.file[name]

	return value, ok
}

// Parse loads configuration values into the provided struct.
// The struct must embed EnvConfig and use `env` tags to specify variable names.
// The namespace is used as a prefix for all variables; less specific prefixes
// (dropping trailing "_" segments) are tried as fallbacks.
// If <NAMESPACE>_CONFIG_FILE is set, the YAML file it names is read first and
// environment variables override its values.
// Supports string, []string (comma separated), int, bool and time.Duration fields.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	src := newSource(namespace)

	if path, ok := src.lookupEnv(FileVar); ok && path != "" {
		src.file, err = loadFile(path)
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}

		envConfig.file = path
	}

	return parse(src, "", cfg)
}

func parse(src source, prefix string, c interface{}) error {
	t := reflect.TypeOf(c).Elem()
	v := reflect.ValueOf(c).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		structField := v.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			envPrefix := field.Tag.Get("envPrefix")

			if err := parse(src, prefix+envPrefix, structField.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(src, prefix, field, structField); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

//nolint:funlen,cyclop
func parseField(
	src source,
	prefix string,
	field reflect.StructField,
	structField reflect.Value,
) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil
	}

	defaultValue, hasDefault := field.Tag.Lookup("default")

	envValue, exists := src.lookup(prefix + envTag)
	if !exists {
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, prefix+envTag)
		}

		envValue = defaultValue
	}

	if field.Tag.Get("required") == "true" && strings.TrimSpace(envValue) == "" {
		return fmt.Errorf("%w: %s", ErrVarEmpty, prefix+envTag)
	}

	if field.Type == durationType {
		duration, err := parseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", envTag, err)
		}

		structField.SetInt(int64(duration))

		return nil
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		structField.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(envValue, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetInt(intValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envTag, err)
		}

		structField.SetBool(boolValue)
	case reflect.Slice:
		if field.Type.Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type)
		}

		structField.Set(reflect.ValueOf(splitList(envValue)))
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type)
	}

	return nil
}

// parseDuration accepts Go duration strings ("24h") and bare integers as seconds.
func parseDuration(value string) (time.Duration, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

func splitList(value string) []string {
	list := []string{}

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list
}
