// Package crates implements the crates.io registry integration.
//
// It locates Cargo manifests, queries the crates.io API for version
// metadata, materializes published crates into a temporary directory,
// resolves full dependency graphs through cargo's own resolver, and
// attaches the OpenFare lock record found next to each resolved
// package. The two entry points (by package name, by project
// directory) implement the extension.Extension contract consumed by
// the host dispatcher.
package crates
