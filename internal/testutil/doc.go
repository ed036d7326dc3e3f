// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test doubles shared across packages, most
// notably a controllable Clock so time-dependent supervision logic can
// be tested without real sleeps.
package testutil
