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

package fullysec

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// DamgardDecMultiClient is a client in the decentralized variant of
// the multi-input Damgard scheme, with the decentralization following
// Abdalla, Benhamouda, Kohlweiss and Waldner: "Decentralizing
// Inner-Product Functional Encryption". There is no central authority:
// the clients derive pairwise shared secrets from published
// Diffie-Hellman keys and expand them into zero-sum blinding shares,
// each client locally generating its own keys. A functional key
// assembled from all clients' shares decrypts sum_i <x_i, y_i>.
type DamgardDecMultiClient struct {
	Idx int
	*DamgardMulti
	ClientPubKey *big.Int
	ClientSecKey *big.Int
	Share        data.Matrix
}

// NewDamgardDecMultiClient returns the client with the given index
// (from [0, numClients)) of a decentralized scheme built over the
// shared parameters of damgardMulti, holding a fresh Diffie-Hellman
// key pair.
func NewDamgardDecMultiClient(idx int, damgardMulti *DamgardMulti) (*DamgardDecMultiClient, error) {
	sec, err := sample.NewUniform(damgardMulti.Params.Q).Sample()
	if err != nil {
		return nil, errors.Wrap(err, "could not generate random value")
	}

	return &DamgardDecMultiClient{
		Idx:          idx,
		DamgardMulti: damgardMulti,
		ClientPubKey: new(big.Int).Exp(damgardMulti.Params.G, sec, damgardMulti.Params.P),
		ClientSecKey: sec,
	}, nil
}

// SetShare derives the client's blinding share from the public keys of
// all clients, pubKeys[k] belonging to client k. Each pair of clients
// expands its shared secret into the same pseudorandom matrix entering
// the two shares with opposite signs, so the shares of all clients sum
// to zero.
func (c *DamgardDecMultiClient) SetShare(pubKeys []*big.Int) error {
	c.Share = data.NewConstantMatrix(c.NumClients, c.Params.L, big.NewInt(0))

	for k := range pubKeys {
		if k == c.Idx {
			continue
		}

		sharedNum := new(big.Int).Exp(pubKeys[k], c.ClientSecKey, c.Params.P)
		sharedKey := sha256.New().Sum([]byte(sharedNum.String()))
		var sharedKeyFixed [32]byte
		copy(sharedKeyFixed[:], sharedKey)

		add, err := data.NewRandomDetMatrix(c.NumClients, c.Params.L, c.Params.Q, &sharedKeyFixed)
		if err != nil {
			return err
		}

		if k < c.Idx {
			c.Share, err = c.Share.Add(add)
			if err != nil {
				return err
			}
		} else {
			c.Share, err = c.Share.Sub(add)
			if err != nil {
				return err
			}
		}
		c.Share = c.Share.Mod(c.Params.Q)
	}

	return nil
}

// DamgardDecMultiSecKey is the key material a client generates for
// itself: a Damgard key pair and a one-time pad.
type DamgardDecMultiSecKey struct {
	sk     *DamgardSecKey
	pk     data.Vector
	OtpKey data.Vector
}

// GenerateKeys locally generates the client's secret key material.
func (c *DamgardDecMultiClient) GenerateKeys() (*DamgardDecMultiSecKey, error) {
	msk, mpk, err := c.Damgard.GenerateMasterKeys()
	if err != nil {
		return nil, errors.Wrap(err, "error in master key generation")
	}

	otp, err := data.NewRandomVector(c.Damgard.Params.L, sample.NewUniform(c.Damgard.Params.Q))
	if err != nil {
		return nil, errors.Wrap(err, "error in one-time pad generation")
	}

	return &DamgardDecMultiSecKey{
		sk:     msk,
		pk:     mpk,
		OtpKey: otp,
	}, nil
}

// Encrypt encrypts the client's vector x blinded by its one-time pad.
func (c *DamgardDecMultiClient) Encrypt(x data.Vector, key *DamgardDecMultiSecKey) (data.Vector, error) {
	if err := x.CheckBound(c.Bound); err != nil {
		return nil, err
	}

	padded := x.Add(key.OtpKey).Mod(c.Params.Q)

	return c.Damgard.Encrypt(padded, key.pk)
}

// DamgardDecMultiDerivedKeyPart is one client's share of a functional
// key: the client's Damgard key for its row of y and its share of the
// pad-compensating scalar, still blinded by the zero-sum share.
type DamgardDecMultiDerivedKeyPart struct {
	KeyPart    *DamgardDerivedKey
	OTPKeyPart *big.Int
}

// DeriveKeyShare derives the client's share of the functional key for
// the matrix y whose i-th row applies to client i.
func (c *DamgardDecMultiClient) DeriveKeyShare(secKey *DamgardDecMultiSecKey, y data.Matrix) (*DamgardDecMultiDerivedKeyPart, error) {
	if err := y.CheckBound(c.Damgard.Params.Bound); err != nil {
		return nil, err
	}

	yPart := data.NewVector(y[c.Idx])
	z1, err := secKey.OtpKey.Dot(yPart)
	if err != nil {
		return nil, err
	}
	z2, err := c.Share.Dot(y)
	if err != nil {
		return nil, err
	}

	zPart := new(big.Int).Add(z1, z2)
	zPart.Mod(zPart, c.Damgard.Params.Q)

	key, err := c.Damgard.DeriveKey(secKey.sk, yPart)
	if err != nil {
		return nil, err
	}

	return &DamgardDecMultiDerivedKeyPart{KeyPart: key, OTPKeyPart: zPart}, nil
}

// DamgardDecMultiDec is the decryptor of the decentralized scheme.
type DamgardDecMultiDec struct {
	*DamgardMulti
}

// NewDamgardDecMultiDec returns a decryptor for a decentralized scheme
// over the shared parameters of damgardMulti.
func NewDamgardDecMultiDec(damgardMulti *DamgardMulti) *DamgardDecMultiDec {
	return &DamgardDecMultiDec{
		DamgardMulti: NewDamgardMultiFromParams(damgardMulti.NumClients,
			damgardMulti.Bound, damgardMulti.Params),
	}
}

// Decrypt assembles the clients' key shares into a functional key and
// decrypts the sum of inner products sum_i <x_i, y_i>; the zero-sum
// property of the blinding shares makes the assembled scalar correct.
func (dc *DamgardDecMultiDec) Decrypt(cipher []data.Vector, partKeys []*DamgardDecMultiDerivedKeyPart, y data.Matrix) (*big.Int, error) {
	if err := y.CheckBound(dc.Bound); err != nil {
		return nil, err
	}
	if len(cipher) != len(partKeys) {
		return nil, fmt.Errorf("the number of keys does not match the number of ciphertexts")
	}

	keys := make([]*DamgardDerivedKey, len(partKeys))
	z := new(big.Int)
	for i, part := range partKeys {
		z.Add(z, part.OTPKeyPart)
		keys[i] = part.KeyPart
	}
	z.Mod(z, dc.Params.Q)

	return dc.DamgardMulti.Decrypt(cipher, &DamgardMultiDerivedKey{Keys: keys, Z: z}, y)
}
