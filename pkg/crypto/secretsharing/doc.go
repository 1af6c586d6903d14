// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package secretsharing implements Shamir's Secret Sharing Scheme.
//
// Shamir's Secret Sharing divides a secret into N shares, where any M shares
// (threshold) can reconstruct the original secret, but M-1 or fewer shares
// reveal no information about it. This is achieved through polynomial
// interpolation in a finite field.
//
// # Mathematical Foundation
//
// Each secret byte is the constant term (a0) of its own polynomial of
// degree M-1:
//
//	p(x) = a0 + a1*x + a2*x^2 + ... + a(M-1)*x^(M-1)
//
// The coefficients a1 through a(M-1) are drawn fresh from the configured
// random source for every byte position. Share i holds p(i) for every
// position, i = 1..N. Any M shares recover a0 by Lagrange interpolation at
// x = 0. All arithmetic is performed in GF(2^8) (see pkg/crypto/gf256).
//
// # Usage Example
//
//	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
//	    Threshold:   3,
//	    TotalShares: 5,
//	    Random:      resolver, // any io.Reader; nil means crypto/rand
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	shares, err := shamir.Split(secret)
//	...
//	reconstructed, err := secretsharing.Combine(shares[:3])
//
// # Constraints
//
//   - Threshold M must satisfy: 1 <= M <= N <= 255
//   - Share x-coordinates are 1-255, index 0 is reserved for the secret
//   - Combine needs at least two shares with distinct x-coordinates
//
// # References
//
// - Shamir, Adi (1979). "How to Share a Secret"
// - Finite field arithmetic: GF(2^8) with AES polynomial (0x11B)
package secretsharing
