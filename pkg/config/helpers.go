package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a setting by its YAML key. The value is parsed according to
// the field type and the result is validated.
func (c *Config) SetValue(key, value string) error {
	field, ok := settingsField(reflect.ValueOf(&c.Settings).Elem(), key)
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	prev := c.Settings
	switch field.Interface().(type) {
	case string:
		field.SetString(value)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case int, int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("configuration key %s cannot be set", key)
	}

	if err := c.Validate(); err != nil {
		c.Settings = prev
		return err
	}
	return nil
}

// GetValue returns a setting by its YAML key.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := settingsField(reflect.ValueOf(c.Settings), key)
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return formatValue(field), nil
}

// Keys returns the setting keys in sorted order.
func (c *Config) Keys() []string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		key := yamlKey(settingsType.Field(i))
		if key == "" {
			continue
		}
		result[key] = formatValue(settingsValue.Field(i))
	}
	return result
}

func settingsField(settings reflect.Value, key string) (reflect.Value, bool) {
	settingsType := settings.Type()
	for i := 0; i < settings.NumField(); i++ {
		if yamlKey(settingsType.Field(i)) == key {
			return settings.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// yamlKey handles yaml tags with options (e.g., "install_path,omitempty").
func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func formatValue(v reflect.Value) string {
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
