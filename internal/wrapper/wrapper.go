// Package wrapper generates the C++ shim compiled into every model
// library. The shim flattens the Verilated model behind a C ABI
// (model_create, model_eval, model_work, ...) and embeds the model's
// canonical JSON config so a loader can discover the port map without
// re-parsing headers.
//
// Output is byte-deterministic for a given interface: section bodies
// are rendered from the sorted Interface, and the embedded config is
// canonical JSON.
package wrapper

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/mheller/vsmoke/internal/canon"
	"github.com/mheller/vsmoke/internal/ports"
)

// Spec is everything the generator needs.
type Spec struct {
	// Component is the Verilator prefix (header and class name).
	Component string
	// Params are the parameter overrides the build used, recorded in
	// the embedded config.
	Params map[string]any
	// Interface is the model's grouped port map.
	Interface ports.Interface
}

// Generate renders wrapper.cpp for the spec.
func Generate(spec Spec) ([]byte, error) {
	if spec.Component == "" {
		return nil, fmt.Errorf("component name is required")
	}

	cfg, err := configJSON(spec)
	if err != nil {
		return nil, err
	}

	data := templateData{
		Component:   spec.Component,
		Config:      escapeCString(string(cfg)),
		SetClocks:   assignAll(spec.Interface.Clocks),
		SetResets:   assignAll(spec.Interface.Resets) + assignInverted(spec.Interface.ResetNs),
		BusDisable:  busDisable(spec.Interface),
		LocalVars:   localVars(spec.Interface),
		BusPrepare:  busPrepare(spec.Interface),
		BusTransfer: busTransfer(spec.Interface),
		WriteBack:   writeBack(spec.Interface),
		ReadRegs:    readRegs(spec.Interface),
	}

	var buf bytes.Buffer
	if err := wrapperTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render wrapper: %w", err)
	}
	return buf.Bytes(), nil
}

// configJSON builds the canonical config blob embedded in the wrapper.
func configJSON(spec Spec) ([]byte, error) {
	params := map[string]any{}
	for k, v := range spec.Params {
		params[k] = v
	}
	m := spec.Interface.Canonical()
	m["component"] = spec.Component
	m["params"] = params
	b, err := canon.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return b, nil
}

// escapeCString escapes a blob for inclusion in a C string literal.
func escapeCString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

type templateData struct {
	Component   string
	Config      string
	SetClocks   string
	SetResets   string
	BusDisable  string
	LocalVars   string
	BusPrepare  string
	BusTransfer string
	WriteBack   string
	ReadRegs    string
}

// assignAll drives every named signal from one value.
func assignAll(names []string) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "    m->impl.%s = value;\n", name)
	}
	return b.String()
}

// assignInverted drives active-low signals from the logical value.
func assignInverted(names []string) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "    m->impl.%s = value == 0 ? 1 : 0;\n", name)
	}
	return b.String()
}

// busDisable quiesces every stream bus: inputs stop offering, outputs
// stop accepting. Used while reset is asserted.
func busDisable(ifc ports.Interface) string {
	var b strings.Builder
	for _, bus := range ifc.Inputs {
		fmt.Fprintf(&b, "    m->impl.%s_tvalid = 0;\n", bus.Name)
	}
	for _, bus := range ifc.Outputs {
		fmt.Fprintf(&b, "    m->impl.%s_tready = 0;\n", bus.Name)
	}
	return b.String()
}

// localVars declares the per-bus cursors for a work call.
func localVars(ifc ports.Interface) string {
	var b strings.Builder
	for i, bus := range ifc.Inputs {
		fmt.Fprintf(&b, "    int64_t %s_avail = input_sizes[%d];\n", bus.Name, i)
		fmt.Fprintf(&b, "    int64_t %s_done = 0;\n", bus.Name)
		fmt.Fprintf(&b, "    const int32_t *%s_data = input_items[%d];\n", bus.Name, i)
	}
	for i, bus := range ifc.Outputs {
		fmt.Fprintf(&b, "    int64_t %s_space = output_sizes[%d];\n", bus.Name, i)
		fmt.Fprintf(&b, "    int64_t %s_done = 0;\n", bus.Name)
		fmt.Fprintf(&b, "    int32_t *%s_data = output_items[%d];\n", bus.Name, i)
	}
	return b.String()
}

// writeMembers emits write_port calls for the present members of an
// input bus, advancing src across the packed item.
func writeMembers(bus ports.Bus) string {
	var b strings.Builder
	if bus.TData > 0 {
		fmt.Fprintf(&b, "            write_port(m->impl.%s_tdata, src);\n", bus.Name)
	}
	if bus.TUser > 0 {
		fmt.Fprintf(&b, "            write_port(m->impl.%s_tuser, src);\n", bus.Name)
	}
	if bus.TLast > 0 {
		fmt.Fprintf(&b, "            write_port(m->impl.%s_tlast, src);\n", bus.Name)
	}
	return b.String()
}

// readMembers emits read_port calls for the present members of an
// output bus.
func readMembers(bus ports.Bus) string {
	var b strings.Builder
	if bus.TData > 0 {
		fmt.Fprintf(&b, "            read_port(m->impl.%s_tdata, dst);\n", bus.Name)
	}
	if bus.TUser > 0 {
		fmt.Fprintf(&b, "            read_port(m->impl.%s_tuser, dst);\n", bus.Name)
	}
	if bus.TLast > 0 {
		fmt.Fprintf(&b, "            read_port(m->impl.%s_tlast, dst);\n", bus.Name)
	}
	return b.String()
}

// busPrepare offers the next input item on idle buses and raises
// tready on outputs with space left.
func busPrepare(ifc ports.Interface) string {
	var b strings.Builder
	for _, bus := range ifc.Inputs {
		fmt.Fprintf(&b, "        if (m->impl.%s_tvalid == 0 && %s_done < %s_avail)\n",
			bus.Name, bus.Name, bus.Name)
		b.WriteString("        {\n")
		fmt.Fprintf(&b, "            const int32_t *src = %s_data + %s_done * %d;\n",
			bus.Name, bus.Name, bus.Words())
		b.WriteString(writeMembers(bus))
		fmt.Fprintf(&b, "            m->impl.%s_tvalid = 1;\n", bus.Name)
		b.WriteString("        }\n")
	}
	for _, bus := range ifc.Outputs {
		fmt.Fprintf(&b, "        m->impl.%s_tready = (%s_done < %s_space);\n",
			bus.Name, bus.Name, bus.Name)
	}
	return b.String()
}

// busTransfer completes handshakes after the falling-edge eval:
// consumed input items drop tvalid, produced output items are read
// out. Any transfer resets the idle budget.
func busTransfer(ifc ports.Interface) string {
	var b strings.Builder
	for _, bus := range ifc.Inputs {
		fmt.Fprintf(&b, "        if (m->impl.%s_tvalid && m->impl.%s_tready)\n", bus.Name, bus.Name)
		b.WriteString("        {\n")
		fmt.Fprintf(&b, "            m->impl.%s_tvalid = 0;\n", bus.Name)
		fmt.Fprintf(&b, "            %s_done += 1;\n", bus.Name)
		b.WriteString("            idle = 0;\n")
		b.WriteString("        }\n")
	}
	for _, bus := range ifc.Outputs {
		fmt.Fprintf(&b, "        if (m->impl.%s_tvalid && m->impl.%s_tready)\n", bus.Name, bus.Name)
		b.WriteString("        {\n")
		fmt.Fprintf(&b, "            int32_t *dst = %s_data + %s_done * %d;\n",
			bus.Name, bus.Name, bus.Words())
		b.WriteString(readMembers(bus))
		fmt.Fprintf(&b, "            %s_done += 1;\n", bus.Name)
		b.WriteString("            idle = 0;\n")
		b.WriteString("        }\n")
	}
	return b.String()
}

// readRegs dispatches a register index to its dout tap. Indices follow
// the sorted register order of the interface, taps without dout read
// as zero.
func readRegs(ifc ports.Interface) string {
	var b strings.Builder
	for i, reg := range ifc.Registers {
		if !reg.DOut {
			continue
		}
		fmt.Fprintf(&b, "    if (reg == %d)\n", i)
		fmt.Fprintf(&b, "        value = m->impl.%s_dout;\n", reg.Name)
	}
	return b.String()
}

// writeBack stores the final cursors into the size arrays the caller
// reads consumed/produced counts from.
func writeBack(ifc ports.Interface) string {
	var b strings.Builder
	for i, bus := range ifc.Inputs {
		fmt.Fprintf(&b, "    input_sizes[%d] = %s_done;\n", i, bus.Name)
	}
	for i, bus := range ifc.Outputs {
		fmt.Fprintf(&b, "    output_sizes[%d] = %s_done;\n", i, bus.Name)
	}
	return b.String()
}

var wrapperTemplate = template.Must(template.New("wrapper").Parse(wrapperText))
