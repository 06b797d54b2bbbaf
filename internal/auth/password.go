package auth

import "golang.org/x/crypto/bcrypt"

// HashSenha hashes a plaintext senha with the given bcrypt cost. Costs
// outside bcrypt's accepted range fall back to the default cost.
func HashSenha(senha string, custo int) (string, error) {
	if custo < bcrypt.MinCost || custo > bcrypt.MaxCost {
		custo = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), custo)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerificarSenha checks a plaintext senha against its stored hash.
func VerificarSenha(hash, senha string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha))
}
