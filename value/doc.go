/*
Package value classifies arbitrary Go values into the closed set of kinds
the matching engine reasons about, and provides the uniform accessors
patterns need: strict equality, element and entry iteration, keyed lookup,
property and method access, and descriptions for diagnostics.

Go has no built-in notion of an ordered associative array. Dict fills this
niche; plain Go maps are iterated in sorted key order, so every scan over a
map-like value is deterministic.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package value

import "fmt"

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("value: "+msg, msgargs...)
		panic(msg)
	}
}
