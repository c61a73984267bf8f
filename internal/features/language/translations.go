// Package language — translations.go содержит словари пользовательских
// сообщений. Ключ отсутствует в словаре языка — берём английский.
package language

import "fmt"

// Ключи сообщений. Обработчики не пишут тексты напрямую —
// только через T(lang, key, ...).
const (
	MsgListingCreated    = "listing_created"
	MsgListingInvalid    = "listing_invalid"
	MsgAmountInvalid     = "amount_invalid"
	MsgPriceInvalid      = "price_invalid"
	MsgFieldRequired     = "field_required"
	MsgCurrencyInvalid   = "currency_invalid"
	MsgAskAmount         = "ask_amount"
	MsgAskPrice          = "ask_price"
	MsgAskPayment        = "ask_payment"
	MsgAskContact        = "ask_contact"
	MsgAskNotes          = "ask_notes"
	MsgAskCurrency       = "ask_currency"
	MsgDialogExpired     = "dialog_expired"
	MsgDialogCancelled   = "dialog_cancelled"
	MsgThreadCreated     = "thread_created"
	MsgThreadExists      = "thread_exists"
	MsgThreadDenied      = "thread_denied"
	MsgThreadClosed      = "thread_closed"
	MsgRepRecorded       = "rep_recorded"
	MsgRatePrompt        = "rate_prompt"
	MsgRepSelf           = "rep_self"
	MsgMyRep             = "my_rep"
	MsgBadgeNone         = "badge_none"
	MsgBadgeCurrent      = "badge_current"
	MsgEscrowCreated     = "escrow_created"
	MsgEscrowBelowMin    = "escrow_below_min"
	MsgEscrowNotFound    = "escrow_not_found"
	MsgEscrowBadState    = "escrow_bad_state"
	MsgEscrowCompleted   = "escrow_completed"
	MsgEscrowDisputed    = "escrow_disputed"
	MsgEscrowCancelled   = "escrow_cancelled"
	MsgEscrowStatus      = "escrow_status"
	MsgVerifySubmitted   = "verify_submitted"
	MsgVerifyApproved    = "verify_approved"
	MsgVerifyRejected    = "verify_rejected"
	MsgVerifyBadPlatform = "verify_bad_platform"
	MsgMMBelowThreshold  = "mm_below_threshold"
	MsgMMSubmitted       = "mm_submitted"
	MsgLanguageSet       = "language_set"
	MsgLanguageInvalid   = "language_invalid"
	MsgAdminsOnly        = "admins_only"
	MsgGenericError      = "generic_error"
	MsgHelp              = "help"
)

// Словари. Английский — полный опорный словарь, fr/es переводят
// пользовательский минимум; недостающие ключи падают в английский.
var translations = map[string]map[string]string{
	"en": {
		MsgListingCreated:    "✅ Your %s listing for %s has been posted.",
		MsgListingInvalid:    "❌ Could not create the listing. Please try again.",
		MsgAmountInvalid:     "❌ Invalid kamas amount. Use formats like 10M, 500K or 1000000.",
		MsgPriceInvalid:      "❌ Invalid price. Enter a positive number, e.g. 5 or 4,5.",
		MsgFieldRequired:     "❌ This field is required.",
		MsgCurrencyInvalid:   "❌ Please answer EUR or USD.",
		MsgAskAmount:         "How many kamas? (e.g. 10M)",
		MsgAskPrice:          "Price per million? (e.g. 5)",
		MsgAskPayment:        "Payment method? (e.g. PayPal)",
		MsgAskContact:        "Contact info?",
		MsgAskNotes:          "Additional notes? Send - to skip.",
		MsgAskCurrency:       "Currency? EUR or USD",
		MsgDialogExpired:     "⌛ The form expired. Start again with !sell or !buy.",
		MsgDialogCancelled:   "🚫 Form cancelled.",
		MsgThreadCreated:     "🔒 Private thread created: %s",
		MsgThreadExists:      "🔒 A thread already exists for this listing: %s",
		MsgThreadDenied:      "❌ Only the participants of this trade can open its thread.",
		MsgThreadClosed:      "🔒 Thread closed. Thanks for trading safely!",
		MsgRepRecorded:       "⭐ Feedback recorded for the seller.",
		MsgRatePrompt:        "How did the trade go? Rate the seller:",
		MsgRepSelf:           "❌ You cannot rate yourself.",
		MsgMyRep:             "⭐ Your reputation: %d (%d positive / %d negative, %d total)",
		MsgBadgeNone:         "You have no seller badge yet. Positive feedback unlocks Bronze, Silver, Gold.",
		MsgBadgeCurrent:      "🏅 Your current badge: %s",
		MsgEscrowCreated:     "🤝 Escrow %s opened for %s (fee %s). Middleman: %s",
		MsgEscrowBelowMin:    "❌ Escrow requires at least %s kamas.",
		MsgEscrowNotFound:    "❌ Escrow not found.",
		MsgEscrowBadState:    "❌ This escrow is already closed.",
		MsgEscrowCompleted:   "✅ Escrow %s completed.",
		MsgEscrowDisputed:    "⚖️ Dispute filed on escrow %s.",
		MsgEscrowCancelled:   "🚫 Escrow %s cancelled.",
		MsgEscrowStatus:      "🤝 Escrow %s: %s, amount %s, fee %s",
		MsgVerifySubmitted:   "✅ Verification application submitted. Reviews take 24-48 hours.",
		MsgVerifyApproved:    "🎉 Congratulations! You are now a Verified Seller.",
		MsgVerifyRejected:    "❌ Your verification application was rejected.\nReason: %s",
		MsgVerifyBadPlatform: "❌ Supported platforms: Twitter, Instagram, Facebook.",
		MsgMMBelowThreshold:  "❌ Requirements: %d+ escrows with %.0f%%+ success rate. Your stats: %d escrows, %.1f%%.",
		MsgMMSubmitted:       "✅ Middleman application submitted! A moderator will review it soon.",
		MsgLanguageSet:       "✅ Language set to %s.",
		MsgLanguageInvalid:   "❌ Supported languages: %s.",
		MsgAdminsOnly:        "❌ This command is for administrators only.",
		MsgGenericError:      "❌ Something went wrong. Please try again later.",
		MsgHelp:              "Commands: !sell, !buy, !cancel, !rep, !myrep, !badge, !escrow, !verify, !applymm, !language",
	},
	"fr": {
		MsgListingCreated:  "✅ Votre annonce %s de %s a été publiée.",
		MsgAmountInvalid:   "❌ Montant de kamas invalide. Utilisez 10M, 500K ou 1000000.",
		MsgPriceInvalid:    "❌ Prix invalide. Entrez un nombre positif, ex. 5 ou 4,5.",
		MsgAskAmount:       "Combien de kamas ? (ex. 10M)",
		MsgAskPrice:        "Prix par million ? (ex. 5)",
		MsgAskPayment:      "Moyen de paiement ? (ex. PayPal)",
		MsgAskContact:      "Contact ?",
		MsgAskNotes:        "Notes supplémentaires ? Envoyez - pour passer.",
		MsgAskCurrency:     "Devise ? EUR ou USD",
		MsgDialogExpired:   "⌛ Le formulaire a expiré. Recommencez avec !sell ou !buy.",
		MsgThreadCreated:   "🔒 Fil privé créé : %s",
		MsgThreadExists:    "🔒 Un fil existe déjà pour cette annonce : %s",
		MsgRepRecorded:     "⭐ Avis enregistré pour le vendeur.",
		MsgRatePrompt:      "Comment s'est passé l'échange ? Notez le vendeur :",
		MsgRepSelf:         "❌ Vous ne pouvez pas vous noter vous-même.",
		MsgMyRep:           "⭐ Votre réputation : %d (%d positifs / %d négatifs, %d au total)",
		MsgEscrowBelowMin:  "❌ Le séquestre demande au moins %s kamas.",
		MsgVerifySubmitted: "✅ Candidature envoyée. Comptez 24-48 heures.",
		MsgLanguageSet:     "✅ Langue définie sur %s.",
		MsgGenericError:    "❌ Une erreur est survenue. Réessayez plus tard.",
	},
	"es": {
		MsgListingCreated:  "✅ Tu anuncio de %s por %s ha sido publicado.",
		MsgAmountInvalid:   "❌ Cantidad de kamas inválida. Usa 10M, 500K o 1000000.",
		MsgPriceInvalid:    "❌ Precio inválido. Introduce un número positivo, ej. 5 o 4,5.",
		MsgAskAmount:       "¿Cuántos kamas? (ej. 10M)",
		MsgAskPrice:        "¿Precio por millón? (ej. 5)",
		MsgAskPayment:      "¿Método de pago? (ej. PayPal)",
		MsgAskContact:      "¿Contacto?",
		MsgAskNotes:        "¿Notas adicionales? Envía - para omitir.",
		MsgAskCurrency:     "¿Moneda? EUR o USD",
		MsgDialogExpired:   "⌛ El formulario expiró. Empieza de nuevo con !sell o !buy.",
		MsgThreadCreated:   "🔒 Hilo privado creado: %s",
		MsgRepRecorded:     "⭐ Valoración registrada para el vendedor.",
		MsgRepSelf:         "❌ No puedes valorarte a ti mismo.",
		MsgMyRep:           "⭐ Tu reputación: %d (%d positivas / %d negativas, %d en total)",
		MsgEscrowBelowMin:  "❌ El depósito requiere al menos %s kamas.",
		MsgVerifySubmitted: "✅ Solicitud enviada. El proceso toma 24-48 horas.",
		MsgLanguageSet:     "✅ Idioma cambiado a %s.",
		MsgGenericError:    "❌ Algo salió mal. Inténtalo más tarde.",
	},
}

// T возвращает сообщение key на языке lang, подставляя args.
// Неизвестный язык или отсутствующий перевод → английский.
func T(lang, key string, args ...interface{}) string {
	dict, ok := translations[lang]
	if !ok {
		dict = translations["en"]
	}
	tmpl, ok := dict[key]
	if !ok {
		tmpl = translations["en"][key]
	}
	if tmpl == "" {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
