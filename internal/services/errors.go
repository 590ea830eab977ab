package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("enregistrement introuvable")
	ErrInvalidPassword    = errors.New("mot de passe invalide")
	ErrUnauthorized       = errors.New("non autorisé")
	ErrInvalidState       = errors.New("transition d'état invalide")
	ErrMissingLoan        = errors.New("identifiant du prêt requis")
	ErrMissingDate        = errors.New("date de remboursement requise")
	ErrMissingSlipNumber  = errors.New("numéro de bordereau requis")
	ErrActiveRequest      = errors.New("une demande de remboursement est déjà en cours pour ce prêt")
	ErrLoanNotSettleable  = errors.New("ce prêt ne peut pas être remboursé par anticipation")
	ErrNotVerified        = errors.New("le bordereau doit être vérifié avant l'approbation")
	ErrConfirmationNeeded = errors.New("confirmation explicite requise")
)
