package kernel

import "testing"

// referenceFlgTake restates the residual algebra from the design note
// verbatim, independently of the production implementation, so the table
// below is pinned against the documented rule rather than against
// whatever flags.go happens to do.
func referenceFlgTake(flags, mask uint32, all bool) (residual, newFlags uint32) {
	event := mask
	if mask&flags != 0 {
		if all {
			event &= ^flags
		} else {
			event = 0
		}
	}
	newFlags = flags
	if event == 0 {
		newFlags &^= mask
	}
	return event, newFlags
}

// TestFlgTakeTruthTable enumerates every combination of a 2-bit mask and a
// 2-bit flag set, in both "all" and "any" mode, per the design note's
// instruction not to rationalize the formula without checking every row.
func TestFlgTakeTruthTable(t *testing.T) {
	for _, all := range []bool{false, true} {
		for mask := uint32(0); mask < 4; mask++ {
			for flags := uint32(0); flags < 4; flags++ {
				wantResidual, wantFlags := referenceFlgTake(flags, mask, all)

				sys := newTestSystem(func() {})
				flg := &Flags{flags: flags}

				gotResidual := sys.FlgTake(flg, mask, all)

				if gotResidual != wantResidual {
					t.Errorf("all=%v mask=%02b flags=%02b: residual = %02b, want %02b",
						all, mask, flags, gotResidual, wantResidual)
				}
				if flg.flags != wantFlags {
					t.Errorf("all=%v mask=%02b flags=%02b: flags after = %02b, want %02b",
						all, mask, flags, flg.flags, wantFlags)
				}
			}
		}
	}
}

func TestFlgGiveSetsBits(t *testing.T) {
	sys := newTestSystem(func() {})
	flg := NewFlags()
	sys.FlgGive(flg, 0b01)
	sys.FlgGive(flg, 0b10)
	if flg.flags != 0b11 {
		t.Fatalf("flags = %02b, want %02b", flg.flags, 0b11)
	}
}
