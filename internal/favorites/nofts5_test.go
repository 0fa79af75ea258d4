// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !sqlite_fts5

package favorites

const fts5Enabled = false
