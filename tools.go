//go:build tools
// +build tools

package instrument

import (
	_ "github.com/maxbrunsfeld/counterfeiter/v6"
)
