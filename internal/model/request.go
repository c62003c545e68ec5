package model

// Scenario distinguishes the three notarize request shapes. The scenario
// determines which signer fields accompany the document; storage behavior is
// identical for all three.
type Scenario int

const (
	// ScenarioSolo: the operating company signs the eventual transaction.
	ScenarioSolo Scenario = iota + 1
	// ScenarioMultisig: a multisig wallet tied to the company address.
	ScenarioMultisig
	// ScenarioExternalSigner: the transaction arrives already signed by an
	// external address.
	ScenarioExternalSigner
)

// String returns the scenario name used in response messages and metrics.
func (s Scenario) String() string {
	switch s {
	case ScenarioSolo:
		return "solo"
	case ScenarioMultisig:
		return "multisig"
	case ScenarioExternalSigner:
		return "external-signer"
	default:
		return "unknown"
	}
}

// MultisigParams carries the auxiliary fields of a multisig notarize request.
// They are stored for display only and never verified cryptographically.
type MultisigParams struct {
	PublicAddresses   []string `json:"public_addresses"`
	CompleteMultisig  string   `json:"complete_multisig"`
	PartiallySignedTx string   `json:"partially_signed_tx"`
}

// ExternalSignerParams carries the auxiliary fields of an externally-signed
// notarize request.
type ExternalSignerParams struct {
	UserPublicAddress string `json:"user_public_address"`
	SignedTxJSON      string `json:"signed_tx_json"`
}

// NotarizeRequest is the tagged variant over the three scenarios: the common
// core is always present, and at most one of Multisig/ExternalSigner is set,
// matching Scenario.
type NotarizeRequest struct {
	Scenario        Scenario              `json:"-"`
	DocumentBase64  string                `json:"document_base64"`
	FileName        string                `json:"file_name"`
	StorageID       string                `json:"storage_id"`
	FolderPath      string                `json:"folder_path"`
	Metadata        Metadata              `json:"metadata"`
	SelectedLedgers []string              `json:"selected_chain"`
	Multisig        *MultisigParams       `json:"-"`
	ExternalSigner  *ExternalSignerParams `json:"-"`
}

// QueryRequest addresses one record for retrieval.
type QueryRequest struct {
	StorageID       string   `json:"storage_id"`
	FolderPath      string   `json:"folder_path"`
	FileName        string   `json:"file_name"`
	SelectedLedgers []string `json:"selected_chain"`
}
