package service

import (
	"context"
	"testing"

	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
)

func novoUsuarioService(repo *fakeUsuarioRepo) *UsuarioService {
	return NewUsuarioService(UsuarioDependencies{
		UsuarioRepo: repo,
		Tokens:      auth.NewTokenManager("segredo-de-teste", 60),
		BcryptCost:  4,
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashSenha("senha-forte", 4)
	if err != nil {
		t.Fatal(err)
	}
	repo := newFakeUsuarioRepo(&domain.Usuario{
		Nome: "Ana", Email: "ana@empresa.com", SenhaHash: hash,
		Perfil: domain.PerfilUsuario, Ativo: true,
	})
	svc := novoUsuarioService(repo)

	t.Run("credenciais corretas emitem token", func(t *testing.T) {
		resultado, err := svc.Login(ctx, "ana@empresa.com", "senha-forte")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if resultado.Token == "" {
			t.Fatal("token vazio")
		}
		if resultado.Usuario.Email != "ana@empresa.com" {
			t.Fatalf("usuário = %s", resultado.Usuario.Email)
		}
	})

	t.Run("senha errada e email desconhecido são indistinguíveis", func(t *testing.T) {
		_, errSenha := svc.Login(ctx, "ana@empresa.com", "errada")
		_, errEmail := svc.Login(ctx, "ninguem@empresa.com", "tanto-faz")
		if codigoDe(t, errSenha) != "UNAUTHORIZED" || codigoDe(t, errEmail) != "UNAUTHORIZED" {
			t.Fatalf("códigos = %v / %v, esperava UNAUTHORIZED em ambos", errSenha, errEmail)
		}
	})

	t.Run("conta desativada não entra", func(t *testing.T) {
		if err := repo.Update(ctx, &domain.Usuario{
			ID: 1, Nome: "Ana", Email: "ana@empresa.com", SenhaHash: hash,
			Perfil: domain.PerfilUsuario, Ativo: false,
		}); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Login(ctx, "ana@empresa.com", "senha-forte")
		if got := codigoDe(t, err); got != "UNAUTHORIZED" {
			t.Fatalf("code = %s, esperava UNAUTHORIZED", got)
		}
	})
}

func TestRegistrar(t *testing.T) {
	ctx := context.Background()
	empresa := int64(7)
	admin := &domain.Usuario{ID: 1, Perfil: domain.PerfilAdmin, Ativo: true}
	gestor := &domain.Usuario{ID: 2, Perfil: domain.PerfilAdminEmpresa, Ativo: true, EmpresaID: &empresa}

	t.Run("admin cria técnico", func(t *testing.T) {
		svc := novoUsuarioService(newFakeUsuarioRepo(admin, gestor))
		criado, err := svc.Registrar(ctx, admin, RegistrarInput{
			Nome: "Bruno", Email: "bruno@ti.com", Senha: "12345678", Perfil: domain.PerfilTecnicoTI,
		})
		if err != nil {
			t.Fatalf("registrar: %v", err)
		}
		if criado.Perfil != domain.PerfilTecnicoTI || !criado.Ativo {
			t.Fatalf("criado = %+v", criado)
		}
		if criado.SenhaHash == "12345678" {
			t.Fatal("senha gravada em claro")
		}
	})

	t.Run("admin de empresa só cria usuários da própria empresa", func(t *testing.T) {
		svc := novoUsuarioService(newFakeUsuarioRepo(admin, gestor))
		if _, err := svc.Registrar(ctx, gestor, RegistrarInput{
			Nome: "Carla", Email: "carla@empresa.com", Senha: "12345678", Perfil: domain.PerfilTecnicoTI,
		}); err == nil {
			t.Fatal("gestor não deveria criar técnicos")
		}

		outraEmpresa := int64(99)
		criado, err := svc.Registrar(ctx, gestor, RegistrarInput{
			Nome: "Carla", Email: "carla@empresa.com", Senha: "12345678",
			Perfil: domain.PerfilUsuario, EmpresaID: &outraEmpresa,
		})
		if err != nil {
			t.Fatalf("registrar: %v", err)
		}
		if criado.EmpresaID == nil || *criado.EmpresaID != empresa {
			t.Fatalf("empresa = %v, esperava escopo forçado para %d", criado.EmpresaID, empresa)
		}
	})

	t.Run("email duplicado conflita", func(t *testing.T) {
		svc := novoUsuarioService(newFakeUsuarioRepo(admin))
		input := RegistrarInput{Nome: "Davi", Email: "davi@ti.com", Senha: "12345678", Perfil: domain.PerfilUsuario}
		if _, err := svc.Registrar(ctx, admin, input); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Registrar(ctx, admin, input)
		if got := codigoDe(t, err); got != "CONFLICT" {
			t.Fatalf("code = %s, esperava CONFLICT", got)
		}
	})

	t.Run("técnico não gerencia usuários", func(t *testing.T) {
		svc := novoUsuarioService(newFakeUsuarioRepo(admin))
		_, err := svc.Registrar(ctx, tecnico(5), RegistrarInput{
			Nome: "Eva", Email: "eva@ti.com", Senha: "12345678", Perfil: domain.PerfilUsuario,
		})
		if got := codigoDe(t, err); got != "FORBIDDEN" {
			t.Fatalf("code = %s, esperava FORBIDDEN", got)
		}
	})
}

func TestListarTecnicos(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUsuarioRepo(
		tecnico(1),
		tecnico(2),
		&domain.Usuario{ID: 3, Perfil: domain.PerfilTecnicoTI, Ativo: false},
		solicitante(100),
	)
	svc := novoUsuarioService(repo)

	lista, err := svc.ListarTecnicos(ctx, tecnico(1), nil)
	if err != nil {
		t.Fatalf("listar técnicos: %v", err)
	}
	if len(lista) != 2 {
		t.Fatalf("técnicos ativos = %d, esperava 2", len(lista))
	}

	if _, err := svc.ListarTecnicos(ctx, solicitante(100), nil); err == nil {
		t.Fatal("usuário comum não lista técnicos")
	}
}
