package issuance

import (
	"github.com/goliatone/go-issuance/attestation"
	"github.com/goliatone/go-issuance/core"
)

const BasicValidatorName = "basic"

func BasicValidator() core.ProofValidator {
	return core.BasicProofValidator{}
}

func SignedValidator(keys *attestation.Keyring, logger core.Logger) core.ProofValidator {
	return attestation.NewSignedValidator(keys, logger)
}

// DefaultExtensionHooks registers the basic validator and, when keys is not
// nil, the guardian-signed one.
func DefaultExtensionHooks(keys *attestation.Keyring, logger core.Logger) (*ExtensionHooks, error) {
	hooks := NewExtensionHooks()
	if err := hooks.RegisterValidatorPack(ValidatorPack{Name: BasicValidatorName, Validator: BasicValidator()}); err != nil {
		return nil, err
	}
	if keys == nil {
		return hooks, nil
	}
	if err := hooks.RegisterValidatorPack(ValidatorPack{Name: attestation.ValidatorName, Validator: SignedValidator(keys, logger)}); err != nil {
		return nil, err
	}
	return hooks, nil
}
