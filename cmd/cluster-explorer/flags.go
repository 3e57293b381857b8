package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlag maps a flag onto a config key. Binding only fails for a nil
// flag, which is a programming error.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
