package main

import (
	"errors"
	"flag"
	"fmt"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"

	"github.com/refaktor/bridgegen/bridge"
	"github.com/refaktor/bridgegen/config"
)

var optName string
var optOut string

// Generated code uses generics and runtime/cgo.Handle.
const minGoVersion = "1.18"

func init() {
	flag.StringVar(&optName, "name", "bridge", "bridge module (and output directory) name")
	flag.StringVar(&optOut, "o", "bridge.toml", "description file to create")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `usage: bridgegen-init [options...]

options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(),
			`
examples:
  bridgegen-init
  	Describe a bridge module "bridge" for the package in the current directory
  bridgegen-init -name audio -o audio.toml
  	Describe a bridge module "audio" in audio.toml

The native package is the package in the current directory, as named by the
enclosing go.mod. Generated files go to a directory named after the bridge
module, next to the description.
`)
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Println("Error:", "unexpected arguments")
		fmt.Println()
		flag.Usage()
		os.Exit(1)
	}

	if !token.IsIdentifier(optName) {
		fmt.Printf("Error: %q is not a valid Go package name.\n", optName)
		os.Exit(1)
	}

	if _, err := os.Lstat(optOut); err == nil {
		fmt.Printf("Error: \"%v\" already exists. Use the -o option to create a different file.\n", optOut)
		os.Exit(1)
	}

	wd, err := os.Getwd()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	pkgPath, err := nativePackage(wd)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if err := checkName(optName, pkgPath); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(optOut, []byte(config.DefaultConfig(optName, pkgPath, optName)), 0666); err != nil {
		fmt.Println("Error writing description:", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully created %v for %v!\n", optOut, pkgPath)
	fmt.Printf("Edit it, then run \"bridgegen %v\" to generate the bridge.\n", optOut)
}

// checkName reports whether a bridge module called name can import the
// native package pkgPath. The generator guesses package names the same way.
func checkName(name, pkgPath string) error {
	if bridge.PackageName(pkgPath) == name {
		return fmt.Errorf("the bridge module can't be named like the native package %v. Use the -name option to choose a different name.", pkgPath)
	}
	return nil
}

// nativePackage returns the import path of the package in dir, as named
// by the closest go.mod in dir or its parents.
func nativePackage(dir string) (string, error) {
	modDir := dir
	for {
		if _, err := os.Stat(filepath.Join(modDir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(modDir)
		if parent == modDir {
			return "", errors.New("cannot find go.mod in current directory or any parent. Use \"go mod init\" to initialize a new Go project.")
		}
		modDir = parent
	}

	data, err := os.ReadFile(filepath.Join(modDir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	mod, err := modfile.ParseLax(filepath.Join(modDir, "go.mod"), data, nil)
	if err != nil {
		return "", fmt.Errorf("parsing go.mod: %w", err)
	}
	if mod.Module == nil {
		return "", errors.New("expected module in go.mod")
	}
	if mod.Go != nil && semver.Compare(goSemver(mod.Go.Version), goSemver(minGoVersion)) < 0 {
		return "", fmt.Errorf("go.mod declares go %v, generated bridges need go %v or later", mod.Go.Version, minGoVersion)
	}

	rel, err := filepath.Rel(modDir, dir)
	if err != nil {
		return "", err
	}
	pkgPath := mod.Module.Mod.Path
	if rel != "." {
		pkgPath = path.Join(pkgPath, filepath.ToSlash(rel))
	}
	if err := module.CheckImportPath(pkgPath); err != nil {
		return "", err
	}
	return pkgPath, nil
}

// goSemver converts a Go version ("1.21", "1.21.3", "1.21rc1") to semver
// ("v1.21.0", "v1.21.3", "v1.21.0-rc1"), so pre-releases sort before the
// release.
func goSemver(v string) string {
	num, pre := v, ""
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		num, pre = v[:i], "-"+v[i:]
	}
	if strings.Count(num, ".") == 1 {
		num += ".0"
	}
	return "v" + num + pre
}
