package inibin

// HashKey hashes a full property path such as "MeshSkin*SimpleSkin".
// ASCII letters are folded to lower case; the result matches the keys
// stored in inibin files.
func HashKey(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		h = uint32(c) + 65599*h
	}
	return h
}

// Hash hashes a property given as its section and name.
func Hash(section, name string) uint32 {
	return HashKey(section + "*" + name)
}
