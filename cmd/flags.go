package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SetViperBindings binds viper keys to the command's flags. Persistent flags
// are looked up as well.
func SetViperBindings(cmd *cobra.Command, bindings map[string]string) {
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			continue
		}
		_ = viper.BindPFlag(key, flag)
	}
}

// AddFlagValidation wraps a flag so invalid values are rejected at parse time.
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port flag value
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateChoice accepts value when it is one of allowed, case-insensitively,
// and otherwise suggests the closest option.
func ValidateChoice(value string, allowed []string) error {
	lower := strings.ToLower(value)
	for _, option := range allowed {
		if lower == option {
			return nil
		}
	}

	msg := fmt.Sprintf("unsupported value %q (supported: %s)", value, strings.Join(allowed, ", "))
	if suggestion := closestChoice(lower, allowed); suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", suggestion)
	}

	return fmt.Errorf("%s", msg)
}

// closestChoice returns the option sharing the longest prefix with value.
func closestChoice(value string, allowed []string) string {
	best, bestLen := "", 0
	for _, option := range allowed {
		n := 0
		for n < len(value) && n < len(option) && value[n] == option[n] {
			n++
		}
		if n > bestLen {
			best, bestLen = option, n
		}
	}
	return best
}

func choiceValidator(allowed ...string) func(string) error {
	return func(value string) error {
		return ValidateChoice(value, allowed)
	}
}
