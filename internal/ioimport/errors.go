package ioimport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/verdant/plantimport/pkg/errcode"
)

// ImportTypeError creates an error for an unknown import type.
func ImportTypeError(typ string) error {
	msg := fmt.Sprintf(`Unknown import type <em>%s</em>

<em>Valid types:</em> taxonomy, instance, propagation`, typ)

	return &gn.Error{
		Code: errcode.ImportTypeError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("unknown import type: %s", typ),
	}
}
