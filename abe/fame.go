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

package abe

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// FAME is a ciphertext-policy attribute based encryption scheme based
// on Agrawal and Chase: "FAME: Fast Attribute-based Message
// Encryption". Ciphertexts carry a policy as an MSP; keys are tied to
// attribute sets and decrypt exactly the ciphertexts whose policy the
// attributes satisfy. Encryption is public key. The construction works
// with the assumption size k = 2 and reaches attributes through
// hash-to-curve at several positions per MSP row.
type FAME struct {
	// order of the pairing groups
	P *big.Int
}

// NewFAME configures a new FAME scheme.
func NewFAME() *FAME {
	return &FAME{P: bn256.Order}
}

// FAMESecKey is the master secret key of the FAME scheme.
type FAMESecKey struct {
	PartInt [4]*big.Int
	PartG1  [3]*bn256.G1
}

// FAMEPubKey is the public key of the FAME scheme.
type FAMEPubKey struct {
	PartG2 [2]*bn256.G2
	PartGT [2]*bn256.GT
}

// GenerateMasterKeys generates the public key needed for encryption
// and the master secret key needed for generating attribute keys.
func (a *FAME) GenerateMasterKeys() (*FAMEPubKey, *FAMESecKey, error) {
	val, err := data.NewRandomVector(7, sample.NewUniformRange(big.NewInt(1), a.P))
	if err != nil {
		return nil, nil, err
	}

	partInt := [4]*big.Int{val[0], val[1], val[2], val[3]}
	partG1 := [3]*bn256.G1{
		new(bn256.G1).ScalarBaseMult(val[4]),
		new(bn256.G1).ScalarBaseMult(val[5]),
		new(bn256.G1).ScalarBaseMult(val[6]),
	}
	partG2 := [2]*bn256.G2{
		new(bn256.G2).ScalarBaseMult(val[0]),
		new(bn256.G2).ScalarBaseMult(val[1]),
	}

	tmp1 := new(big.Int).Mul(val[0], val[4])
	tmp1.Add(tmp1, val[6]).Mod(tmp1, a.P)
	tmp2 := new(big.Int).Mul(val[1], val[5])
	tmp2.Add(tmp2, val[6]).Mod(tmp2, a.P)
	partGT := [2]*bn256.GT{
		new(bn256.GT).ScalarBaseMult(tmp1),
		new(bn256.GT).ScalarBaseMult(tmp2),
	}

	return &FAMEPubKey{PartG2: partG2, PartGT: partGT},
		&FAMESecKey{PartInt: partInt, PartG1: partG1}, nil
}

// FAMECipher is a ciphertext of the FAME scheme; it carries the policy
// it was encrypted under.
type FAMECipher struct {
	Ct0     [3]*bn256.G2
	Ct      [][3]*bn256.G1
	CtPrime *bn256.GT
	Msp     *MSP
}

// Encrypt encrypts a GT element msg under the decryption policy given
// by the MSP. Security holds only when the map msp.RowToAttrib is
// injective, which is checked.
func (a *FAME) Encrypt(msg *bn256.GT, msp *MSP, pk *FAMEPubKey) (*FAMECipher, error) {
	if msp.Mat.Rows() == 0 || msp.Mat.Cols() == 0 {
		return nil, fmt.Errorf("empty msp matrix")
	}

	seen := make(map[int]bool)
	for _, attrib := range msp.RowToAttrib {
		if seen[attrib] {
			return nil, fmt.Errorf("some attributes correspond to multiple rows of the MSP struct, the scheme is not secure")
		}
		seen[attrib] = true
	}

	s, err := data.NewRandomVector(2, sample.NewUniform(a.P))
	if err != nil {
		return nil, err
	}

	ct0 := [3]*bn256.G2{
		new(bn256.G2).ScalarMult(pk.PartG2[0], s[0]),
		new(bn256.G2).ScalarMult(pk.PartG2[1], s[1]),
		new(bn256.G2).ScalarBaseMult(new(big.Int).Add(s[0], s[1])),
	}

	ct := make([][3]*bn256.G1, msp.Mat.Rows())
	for i := range msp.Mat {
		for l := 0; l < 3; l++ {
			hsSum, err := hashTwice(strconv.Itoa(msp.RowToAttrib[i])+" "+strconv.Itoa(l), s)
			if err != nil {
				return nil, err
			}
			ct[i][l] = hsSum

			for j := 0; j < msp.Mat.Cols(); j++ {
				hsToM, err := hashTwice("0 "+strconv.Itoa(j)+" "+strconv.Itoa(l), s)
				if err != nil {
					return nil, err
				}

				pow := new(big.Int).Set(msp.Mat[i][j])
				if pow.Sign() < 0 {
					pow.Neg(pow)
					hsToM.ScalarMult(hsToM, pow)
					hsToM.Neg(hsToM)
				} else {
					hsToM.ScalarMult(hsToM, pow)
				}
				ct[i][l].Add(ct[i][l], hsToM)
			}
		}
	}

	ctPrime := new(bn256.GT).ScalarMult(pk.PartGT[0], s[0])
	ctPrime.Add(ctPrime, new(bn256.GT).ScalarMult(pk.PartGT[1], s[1]))
	ctPrime.Add(ctPrime, msg)

	return &FAMECipher{Ct0: ct0, Ct: ct, CtPrime: ctPrime, Msp: msp}, nil
}

// hashTwice hashes the label extended by " 0" and " 1" to G1, scales
// the two points by s[0] and s[1] and returns their sum.
func hashTwice(label string, s data.Vector) (*bn256.G1, error) {
	hs0, err := bn256.HashG1(label + " 0")
	if err != nil {
		return nil, err
	}
	hs1, err := bn256.HashG1(label + " 1")
	if err != nil {
		return nil, err
	}

	return new(bn256.G1).Add(hs0.ScalarMult(hs0, s[0]), hs1.ScalarMult(hs1, s[1])), nil
}

// FAMEAttribKeys is a decryption key tied to a set of possessed
// attributes.
type FAMEAttribKeys struct {
	K0        [3]*bn256.G2
	K         [][3]*bn256.G1
	KPrime    [3]*bn256.G1
	AttribToI map[int]int
}

// GenerateAttribKeys generates a key for the attribute set gamma,
// usable to decrypt any ciphertext whose policy gamma satisfies.
func (a *FAME) GenerateAttribKeys(gamma []int, sk *FAMESecKey) (*FAMEAttribKeys, error) {
	sampler := sample.NewUniform(a.P)

	r, err := data.NewRandomVector(2, sampler)
	if err != nil {
		return nil, err
	}
	sigma, err := data.NewRandomVector(len(gamma), sampler)
	if err != nil {
		return nil, err
	}

	pow0 := new(big.Int).Mul(sk.PartInt[2], r[0])
	pow0.Mod(pow0, a.P)
	pow1 := new(big.Int).Mul(sk.PartInt[3], r[1])
	pow1.Mod(pow1, a.P)
	pow2 := new(big.Int).Add(r[0], r[1])
	pow2.Mod(pow2, a.P)
	pows := [3]*big.Int{pow0, pow1, pow2}

	k0 := [3]*bn256.G2{
		new(bn256.G2).ScalarBaseMult(pow0),
		new(bn256.G2).ScalarBaseMult(pow1),
		new(bn256.G2).ScalarBaseMult(pow2),
	}

	aInv := [2]*big.Int{
		new(big.Int).ModInverse(sk.PartInt[0], a.P),
		new(big.Int).ModInverse(sk.PartInt[1], a.P),
	}

	k := make([][3]*bn256.G1, len(gamma))
	attribToI := make(map[int]int, len(gamma))
	for i, y := range gamma {
		k[i] = [3]*bn256.G1{new(bn256.G1), new(bn256.G1), new(bn256.G1)}
		gSigma := new(bn256.G1).ScalarBaseMult(sigma[i])
		for t := 0; t < 2; t++ {
			sum, err := hashThree(strconv.Itoa(y), pows, t)
			if err != nil {
				return nil, err
			}
			k[i][t].Add(sum, gSigma)
			k[i][t].ScalarMult(k[i][t], aInv[t])
		}

		k[i][2].ScalarBaseMult(sigma[i])
		k[i][2].Neg(k[i][2])

		attribToI[y] = i
	}

	sigmaPrime, err := sampler.Sample()
	if err != nil {
		return nil, err
	}
	gSigmaPrime := new(bn256.G1).ScalarBaseMult(sigmaPrime)

	kPrime := [3]*bn256.G1{new(bn256.G1), new(bn256.G1), new(bn256.G1)}
	for t := 0; t < 2; t++ {
		sum, err := hashThree("0 0", pows, t)
		if err != nil {
			return nil, err
		}
		kPrime[t].Add(sum, gSigmaPrime)
		kPrime[t].ScalarMult(kPrime[t], aInv[t])
		kPrime[t].Add(kPrime[t], sk.PartG1[t])
	}

	kPrime[2].ScalarBaseMult(sigmaPrime)
	kPrime[2].Neg(kPrime[2])
	kPrime[2].Add(kPrime[2], sk.PartG1[2])

	return &FAMEAttribKeys{K0: k0, K: k, KPrime: kPrime, AttribToI: attribToI}, nil
}

// hashThree hashes the label extended by " 0 t", " 1 t" and " 2 t" to
// G1, scales the points by the corresponding entries of pows and
// returns their sum.
func hashThree(label string, pows [3]*big.Int, t int) (*bn256.G1, error) {
	sum := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	for l := 0; l < 3; l++ {
		hs, err := bn256.HashG1(label + " " + strconv.Itoa(l) + " " + strconv.Itoa(t))
		if err != nil {
			return nil, err
		}
		sum.Add(sum, hs.ScalarMult(hs, pows[l]))
	}

	return sum, nil
}

// Decrypt recovers the encrypted GT element from a ciphertext and an
// attribute key. It succeeds iff the possessed attributes satisfy the
// ciphertext's policy; otherwise an error is returned.
func (a *FAME) Decrypt(cipher *FAMECipher, key *FAMEAttribKeys, pk *FAMEPubKey) (*bn256.GT, error) {
	owned := make(map[int]bool, len(key.AttribToI))
	for attrib := range key.AttribToI {
		owned[attrib] = true
	}

	// restrict the policy matrix to rows whose attributes are owned
	mat := make([]data.Vector, 0, len(cipher.Msp.Mat))
	ctForKey := make([][3]*bn256.G1, 0, len(cipher.Ct))
	rowToAttrib := make([]int, 0, len(cipher.Msp.RowToAttrib))
	for i := range cipher.Msp.Mat {
		if owned[cipher.Msp.RowToAttrib[i]] {
			mat = append(mat, cipher.Msp.Mat[i])
			ctForKey = append(ctForKey, cipher.Ct[i])
			rowToAttrib = append(rowToAttrib, cipher.Msp.RowToAttrib[i])
		}
	}

	matForKey, err := data.NewMatrix(mat)
	if err != nil {
		return nil, fmt.Errorf("the provided cipher is faulty")
	}
	if matForKey.Rows() == 0 {
		return nil, fmt.Errorf("provided key is not sufficient for decryption")
	}

	// reconstruction coefficients for the target vector [1, 0, ..., 0]
	target := data.NewConstantVector(matForKey.Cols(), big.NewInt(0))
	target[0].SetInt64(1)
	alpha, err := gaussianElimination(matForKey.Transpose(), target, a.P)
	if err != nil {
		return nil, fmt.Errorf("provided key is not sufficient for decryption")
	}

	msg := new(bn256.GT).Set(cipher.CtPrime)
	for j := 0; j < 3; j++ {
		ctProd := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
		keyProd := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
		for i, attrib := range rowToAttrib {
			ctProd.Add(ctProd, new(bn256.G1).ScalarMult(ctForKey[i][j], alpha[i]))
			keyProd.Add(keyProd, new(bn256.G1).ScalarMult(key.K[key.AttribToI[attrib]][j], alpha[i]))
		}
		keyProd.Add(keyProd, key.KPrime[j])

		ctPairing := bn256.Pair(ctProd, key.K0[j])
		keyPairing := bn256.Pair(keyProd, cipher.Ct0[j])
		msg.Add(msg, ctPairing)
		msg.Add(msg, keyPairing.Neg(keyPairing))
	}

	return msg, nil
}
