package bb84

import (
	"fmt"
	"io"
	"strconv"

	"github.com/markkurossi/tabulate"

	"github.com/qkdlab/bb84-go/pkg/qubit"
)

// RenderTable writes the per-qubit audit table to w in a human-readable
// layout matching the JSON table contents.
func (r *Result) RenderTable(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("#").SetAlign(tabulate.MR)
	tab.Header("Alice Bit").SetAlign(tabulate.MR)
	tab.Header("Alice Basis").SetAlign(tabulate.MC)
	tab.Header("Bob Basis").SetAlign(tabulate.MC)
	tab.Header("Eve").SetAlign(tabulate.MC)
	tab.Header("Eve Bit").SetAlign(tabulate.MR)
	tab.Header("Bob Bit").SetAlign(tabulate.MR)
	tab.Header("Match").SetAlign(tabulate.MC)

	for _, tr := range r.Table {
		row := tab.Row()
		row.Column(strconv.Itoa(tr.Index))
		row.Column(strconv.Itoa(int(tr.AliceBit)))
		row.Column(tr.AliceBasis)
		row.Column(tr.BobBasis)
		row.Column(yesNo(tr.EveIntercepted))
		if tr.EveBit != nil {
			row.Column(strconv.Itoa(int(*tr.EveBit)))
		} else {
			row.Column("-")
		}
		row.Column(strconv.Itoa(int(tr.BobBit)))
		row.Column(yesNo(tr.BasesMatch))
	}
	tab.Print(w)
}

// RenderSummary writes the sifted keys and QBER to w.
func (r *Result) RenderSummary(w io.Writer) {
	fmt.Fprintf(w, "Alice key: %s\n", formatKey(r.AliceKey))
	fmt.Fprintf(w, "Bob key:   %s\n", formatKey(r.BobKey))
	if r.EveBases != nil {
		fmt.Fprintf(w, "Eve key:   %s\n", formatKey(r.EveKey))
	}
	fmt.Fprintf(w, "QBER:      %.4f\n", r.QBER)
	fmt.Fprintf(w, "Sifted:    %d of %d qubits\n", len(r.AliceKey), len(r.AliceBits))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatKey(key []qubit.Bit) string {
	if len(key) == 0 {
		return "(empty)"
	}
	buf := make([]byte, len(key))
	for i, b := range key {
		buf[i] = '0' + byte(b)
	}
	return string(buf)
}
