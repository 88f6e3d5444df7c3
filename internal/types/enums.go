package types

type ProjectType string

const (
	ProjectTypeLocal    ProjectType = "local"
	ProjectTypeExternal ProjectType = "external"
)

type Product string

const (
	ProductApp              Product = "app"
	ProductFramework        Product = "framework"
	ProductStaticLibrary    Product = "static_library"
	ProductUnitTests        Product = "unit_tests"
	ProductUITests          Product = "ui_tests"
	ProductBundle           Product = "bundle"
	ProductCommandLineTool  Product = "command_line_tool"
	ProductStaticFramework  Product = "static_framework"
	ProductDynamicLibrary   Product = "dynamic_library"
	ProductAppExtension     Product = "app_extension"
	ProductWatchApplication Product = "watch_app"
)

// Runnable reports whether a scheme can launch the product.
func (p Product) Runnable() bool {
	switch p {
	case ProductApp, ProductCommandLineTool, ProductWatchApplication, ProductAppExtension:
		return true
	default:
		return false
	}
}

// Testable reports whether the product is a test bundle.
func (p Product) Testable() bool {
	return p == ProductUnitTests || p == ProductUITests
}

type DependencyKind string

const (
	DependencyKindTarget         DependencyKind = "target"
	DependencyKindProject        DependencyKind = "project"
	DependencyKindPackageProduct DependencyKind = "package_product"
	DependencyKindFramework      DependencyKind = "framework"
	DependencyKindXCFramework    DependencyKind = "xcframework"
	DependencyKindLibrary        DependencyKind = "library"
	DependencyKindSDK            DependencyKind = "sdk"
)

// Prebuilt reports whether the dependency points at a binary on disk.
func (k DependencyKind) Prebuilt() bool {
	switch k {
	case DependencyKindFramework, DependencyKindXCFramework, DependencyKindLibrary:
		return true
	default:
		return false
	}
}

type ConfigurationVariant string

const (
	ConfigurationVariantDebug   ConfigurationVariant = "debug"
	ConfigurationVariantRelease ConfigurationVariant = "release"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type SideEffectKind string

const (
	SideEffectKindFile      SideEffectKind = "file"
	SideEffectKindDirectory SideEffectKind = "directory"
	SideEffectKindCommand   SideEffectKind = "command"
)

type SideEffectState string

const (
	SideEffectStatePresent SideEffectState = "present"
	SideEffectStateAbsent  SideEffectState = "absent"
)
