// Package semver provides the version value type and the version-range
// interval algebra used by module descriptors.
//
// # Versions
//
// A [Version] is major.minor.patch with an optional prerelease tail and an
// optional build tail:
//
//	v, err := semver.Parse("1.4.2-beta+20240101")
//	fmt.Println(v.Major, v.Minor, v.Patch) // 1 4 2
//
// Ordering ([Compare]) looks at the numeric triple and then only at whether a
// prerelease is present: a version without prerelease sorts before the same
// triple with one. Prerelease text and build metadata are never compared.
// [Version.Equal], by contrast, is full structural equality including the
// build tail, so two versions can compare as 0 without being Equal.
// This is not full Semantic Versioning 2.0 precedence.
//
// # Ranges
//
// A [Range] is an interval with independently open or closed, independently
// present or absent bounds, written in interval notation:
//
//	[1.0.0,2.0.0)   1.0.0 <= v < 2.0.0
//	(,1.5.0]        v <= 1.5.0
//	[2.0.0,)        v >= 2.0.0
//	*               any version, same as [0.0.0,)
//
// Parse failures from both types are reported as [*FormatError], which
// unwraps to [ErrFormat].
package semver
