package config

import "fmt"

// DefaultConfig returns a starter TOML description of module name. The
// native functions are looked up in nativePackage, which may be empty.
// Generated files go to output, relative to the description.
func DefaultConfig(name, nativePackage, output string) string {
	nativePackageLine := "# native-package = \"example.com/app/impl\""
	if nativePackage != "" {
		nativePackageLine = fmt.Sprintf("native-package = %q", nativePackage)
	}
	return fmt.Sprintf(`# Bridge description, see "bridgegen -h".

# Shared declarations, merged into this file.
# imports = ["common.toml"]

# Prefix of every exchanged symbol. Both sides must agree on it.
prefix = "__bridge__"

# Import path of the package implementing the native side. Leave unset
# if the generated files live in that package.
%v

# Output directory, relative to this file.
output = %q

[module]
name = %q

# A type implemented in Go, held by the foreign side through a handle.
[[module.type]]
name = "Counter"
side = "native"

[[module.function]]
name = "new"
side = "native"
type = "Counter"
returns = "Counter"

[[module.function]]
name = "add"
side = "native"
type = "Counter"
receiver = "mut"    # none | borrowed | mut | owned
returns = "u64"

[[module.function.param]]
name = "n"
type = "u64"
ownership = "owned" # owned | borrowed | mut
`, nativePackageLine, output, name)
}
