// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cloudmine is a minimal client for the CloudMine REST API covering
// the administrative endpoints cmpurge needs: application data deletion,
// account listing, account deletion and per-user data deletion. Every
// request is signed with the application's master key in the
// X-CloudMine-ApiKey header.
package cloudmine
