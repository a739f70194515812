/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package keygen provides number-theoretic key material generators:
// safe primes and ElGamal-style groups of quadratic residues.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// maxPrimeAttempts bounds the probabilistic search for a Germain
// prime; the expected number of attempts at cryptographic bit lengths
// is far below it.
const maxPrimeAttempts = 50000

var one = big.NewInt(1)
var two = big.NewInt(2)

// GetGermainPrime returns a prime q of the given bit length such that
// 2q + 1 is also prime.
func GetGermainPrime(bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("germain prime bit length must be at least 2")
	}

	p := new(big.Int)
	for i := 0; i < maxPrimeAttempts; i++ {
		q, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			return nil, err
		}

		p.Lsh(q, 1)
		p.Add(p, one)
		if p.ProbablyPrime(20) {
			return q, nil
		}
	}

	return nil, fmt.Errorf("failed to generate a germain prime of length %d", bits)
}

// GetSafePrime returns a safe prime p of the given bit length, i.e. a
// prime such that (p-1)/2 is also prime.
func GetSafePrime(bits int) (*big.Int, error) {
	q, err := GetGermainPrime(bits - 1)
	if err != nil {
		return nil, err
	}

	p := new(big.Int).Lsh(q, 1)

	return p.Add(p, one), nil
}
