package voting

import (
	"fmt"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func CounterKeyTotalCargo(eleicaoID domain.EleicaoID, cargoID domain.CargoID) string {
	return fmt.Sprintf("eleicao:%s:cargo:%s:total", eleicaoID, cargoID)
}

func CounterKeyCandidato(eleicaoID domain.EleicaoID, candidatoID domain.CandidatoID) string {
	return fmt.Sprintf("eleicao:%s:candidato:%s", eleicaoID, candidatoID)
}
