// Package chk is a shortcut to the error checks of lol.Main.
//
//	if err = sink.Flush(); chk.E(err) {
//		return
//	}
package chk

import "github.com/nooga/dynvar/pkg/lol"

var F, E, W, I, D, T lol.Chk

func init() {
	F, E, W, I, D, T = lol.Main.Check.F, lol.Main.Check.E, lol.Main.Check.W, lol.Main.Check.I,
		lol.Main.Check.D, lol.Main.Check.T
}
