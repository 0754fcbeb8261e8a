package config

import (
	"errors"

	"github.com/uyouii/clinical-tokenizer/common"
)

var (
	ErrInvalidConfig = common.ErrorInvalidConfig
	ErrLoadConfig    = errors.New("load config failed")
)
