// Package manifest loads module manifests: the list of modules an
// application mounts, with their paths, enabled flags and versions.
//
// Manifests can be written in YAML, JSON or HCL. Every format is reduced to
// the same document, validated against an embedded JSON schema and then
// canonicalized: names become kebab-case, missing paths default to
// "./Pascal/kebab.module" and versions are parsed as semver.
//
// A YAML manifest:
//
//	modules:
//	  - name: users
//	    description: User accounts
//	    version: 1.2.0
//	  - name: welcome
//	    enabled: false
//
// The same manifest in HCL:
//
//	module "users" {
//	  description = "User accounts"
//	  version     = "1.2.0"
//	}
//
//	module "welcome" {
//	  enabled = false
//	}
package manifest
