package autotag

import "debug/elf"

// isELF tries to parse path as an ELF binary using the standard library's
// debug/elf — no example repo or ecosystem library in the pack offers ELF
// introspection, so this is one of the few deliberately stdlib-only corners
// (see DESIGN.md). On success it sets elf/arch/linker tags and reports true
// so the caller skips the generic mimetype dispatch.
func isELF(path string, c *collector) bool {
	f, err := elf.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	c.set(bare("elf"))
	c.set(valued("type", "elf"))

	switch f.Class {
	case elf.ELFCLASS64:
		c.set(valued("arch", "x86_64"))
	case elf.ELFCLASS32:
		c.set(valued("arch", "i686"))
	}

	if f.Section(".dynamic") != nil {
		c.set(valued("linker", "dynamic"))
	}

	return true
}
