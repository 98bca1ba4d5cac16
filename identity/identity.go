// Package identity generates the telemetry identifiers the target application
// keeps in its storage file.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Keys of the identifier fields inside storage.json.
const (
	KeyMacMachineID = "telemetry.macMachineId"
	KeyMachineID    = "telemetry.machineId"
	KeyDevDeviceID  = "telemetry.devDeviceId"
	KeySQMID        = "telemetry.sqmId"
)

const (
	machineIDPrefix = "auth0|user_"
	// machineIDAlphabet leaves out 0 and 1 so they can't be mistaken for O and I.
	machineIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ23456789"
	machineIDSuffix   = 23
)

// IdentifierSet is the group of identifiers written to storage.json.
type IdentifierSet struct {
	MacMachineID string `json:"telemetry.macMachineId" yaml:"telemetry.macMachineId"`
	MachineID    string `json:"telemetry.machineId" yaml:"telemetry.machineId"`
	DevDeviceID  string `json:"telemetry.devDeviceId" yaml:"telemetry.devDeviceId"`
	SQMID        string `json:"telemetry.sqmId" yaml:"telemetry.sqmId"`
}

// Field is one key/value pair of an IdentifierSet.
type Field struct {
	Key   string
	Label string
	Value string
}

// Fields returns the identifiers in display order.
func (s IdentifierSet) Fields() []Field {
	return []Field{
		{Key: KeyMachineID, Label: "Machine ID", Value: s.MachineID},
		{Key: KeyMacMachineID, Label: "Mac Machine ID", Value: s.MacMachineID},
		{Key: KeyDevDeviceID, Label: "Dev Device ID", Value: s.DevDeviceID},
		{Key: KeySQMID, Label: "SQM ID", Value: s.SQMID},
	}
}

// Map returns the identifiers keyed by their storage.json key.
func (s IdentifierSet) Map() map[string]interface{} {
	m := make(map[string]interface{}, 4)
	for _, f := range s.Fields() {
		m[f.Key] = f.Value
	}
	return m
}

// Generator produces identifiers. It is not safe for concurrent use.
type Generator struct {
	entropy io.Reader
	rng     *mrand.Rand
}

// NewGenerator returns a Generator backed by crypto/rand for hashed and UUID
// identifiers and an auto-seeded PCG for the machine id characters.
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.Reader, mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64())))
}

// NewGeneratorWithSource returns a Generator reading from the given sources.
func NewGeneratorWithSource(entropy io.Reader, rng *mrand.Rand) *Generator {
	return &Generator{entropy: entropy, rng: rng}
}

// MacMachineID returns the lowercase hex SHA-256 digest of 32 random bytes.
func (g *Generator) MacMachineID() string {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		panic(fmt.Sprintf("identity: reading entropy: %v", err))
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// MachineID returns the hex encoding of "auth0|user_" followed by a two digit
// number and 23 characters from machineIDAlphabet.
func (g *Generator) MachineID() string {
	var sb strings.Builder
	sb.Grow(len(machineIDPrefix) + 2 + machineIDSuffix)
	sb.WriteString(machineIDPrefix)
	fmt.Fprintf(&sb, "%02d", g.rng.IntN(100))
	for i := 0; i < machineIDSuffix; i++ {
		sb.WriteByte(machineIDAlphabet[g.rng.IntN(len(machineIDAlphabet))])
	}
	return hex.EncodeToString([]byte(sb.String()))
}

// DevDeviceID returns a random version 4 UUID.
func (g *Generator) DevDeviceID() string {
	id, err := uuid.NewRandomFromReader(g.entropy)
	if err != nil {
		panic(fmt.Sprintf("identity: generating uuid: %v", err))
	}
	return id.String()
}

// NewSet regenerates every identifier. The SQM id of old is kept when old is
// non-nil and its SQM id is set.
func (g *Generator) NewSet(old *IdentifierSet) IdentifierSet {
	set := IdentifierSet{
		MacMachineID: g.MacMachineID(),
		MachineID:    g.MachineID(),
		DevDeviceID:  g.DevDeviceID(),
	}
	if old != nil && old.SQMID != "" {
		set.SQMID = old.SQMID
	} else {
		set.SQMID = g.MacMachineID()
	}
	return set
}

var defaultGenerator = NewGenerator()

// NewSet is Generator.NewSet on the package default generator.
func NewSet(old *IdentifierSet) IdentifierSet {
	return defaultGenerator.NewSet(old)
}

// DecodeMachineID returns the readable form of a machine id.
func DecodeMachineID(machineID string) (string, error) {
	raw, err := hex.DecodeString(machineID)
	if err != nil {
		return "", fmt.Errorf("machine id is not hex: %w", err)
	}
	return string(raw), nil
}
