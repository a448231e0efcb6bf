package loader

import (
	"encoding/json"
	"fmt"

	"github.com/hyluen/fateloom/types"
	lua "github.com/yuin/gopher-lua"
)

// LoadLua executes an event script in a sandboxed VM and returns the
// collected records in authoring order. The DSL is one curried
// constructor:
//
//	Event "fork_in_road" {
//	  type = "normal",
//	  text = "The path splits beneath the dead tree.",
//	  weight = 2,
//	  options = {
//	    { text = "Take the rock", effect = { inventory_add = "Rock" } },
//	    { text = "Walk on", effect = {} },
//	  },
//	}
//
// Tables are converted to the same JSON shapes the interchange format
// uses, so both frontends share one decoding path. The VM is discarded
// after loading; no Lua runs at play time.
func LoadLua(path string) ([]types.Event, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	var collected []*lua.LTable
	L.SetGlobal("Event", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString("id", lua.LString(id))
			collected = append(collected, tbl)
			return 0
		}))
		return 1
	}))

	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("executing %s: %w", path, err)
	}

	events := make([]types.Event, 0, len(collected))
	for _, tbl := range collected {
		ev, err := eventFromTable(tbl)
		if err != nil {
			return nil, fmt.Errorf("compiling event in %s: %w", path, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "print",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

// eventFromTable converts an event table to a record by funneling it
// through the JSON codec, so unknown-key preservation and scalar-or-list
// handling match the interchange format exactly.
func eventFromTable(tbl *lua.LTable) (types.Event, error) {
	m, ok := toGoValue(tbl).(map[string]any)
	if !ok {
		return types.Event{}, fmt.Errorf("event definition must be a table of fields")
	}

	// An empty Lua table is ambiguous between array and map; options is
	// always an array.
	if v, ok := m["options"]; ok {
		if mv, isMap := v.(map[string]any); isMap && len(mv) == 0 {
			m["options"] = []any{}
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return types.Event{}, err
	}
	var ev types.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return types.Event{}, err
	}
	return ev, nil
}

// toGoValue converts a Lua value to a Go value recursively. Tables with
// sequential integer keys become slices, everything else becomes maps.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}
