package theme

import (
	"context"
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/conio/color"
)

// luaTimeout bounds how long a theme script may run. Scripts compute color
// tables; anything long-running is broken.
const luaTimeout = 5 * time.Second

// ParseLua executes a theme script in a sandboxed Lua state and reads the
// global `theme` table it leaves behind:
//
//	theme = {
//	  name = "midnight",
//	  colors = { "#000000", ... 16 hex strings ... },
//	  foreground = "Gray",
//	  background = "Black",
//	}
//
// The state has only the base, table, string, and math libraries; file,
// process, and module loading are unavailable.
func ParseLua(script string) (Theme, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(script); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrBadTheme, err)
	}
	return themeFromState(L)
}

// LoadLua reads and executes a theme script file.
func LoadLua(path string) (Theme, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("load theme: %w", err)
	}
	return ParseLua(string(script))
}

func themeFromState(L *lua.LState) (Theme, error) {
	tbl, ok := L.GetGlobal("theme").(*lua.LTable)
	if !ok {
		return Theme{}, fmt.Errorf("%w: script did not define a theme table", ErrBadTheme)
	}

	t := New(lua.LVAsString(tbl.RawGetString("name")))

	colors, ok := tbl.RawGetString("colors").(*lua.LTable)
	if !ok {
		return Theme{}, fmt.Errorf("%w: missing colors table", ErrBadTheme)
	}
	if n := colors.Len(); n != color.SlotCount {
		return Theme{}, fmt.Errorf("%w: %d colors, want %d", ErrBadTheme, n, color.SlotCount)
	}
	for i := 0; i < color.SlotCount; i++ {
		entry := colors.RawGetInt(i + 1)
		str, ok := entry.(lua.LString)
		if !ok {
			return Theme{}, fmt.Errorf("%w: color %d is not a string", ErrBadTheme, i)
		}
		rgb, err := color.ParseHex(string(str))
		if err != nil {
			return Theme{}, fmt.Errorf("%w: color %d: %v", ErrBadTheme, i, err)
		}
		t.Colors[i] = rgb
	}

	var err error
	if t.Foreground, err = slotValue(tbl.RawGetString("foreground"), t.Foreground); err != nil {
		return Theme{}, err
	}
	if t.Background, err = slotValue(tbl.RawGetString("background"), t.Background); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func slotValue(v lua.LValue, fallback color.Slot) (color.Slot, error) {
	if v == lua.LNil {
		return fallback, nil
	}
	name, ok := v.(lua.LString)
	if !ok {
		return 0, fmt.Errorf("%w: slot name is not a string", ErrBadTheme)
	}
	slot, ok := color.SlotFromName(string(name))
	if !ok {
		return 0, fmt.Errorf("%w: unknown slot name %q", ErrBadTheme, name)
	}
	return slot, nil
}
